package usecase

import (
	"context"
	"strings"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/data/repository"
	"carwash-web/internal/dto/request"
	"carwash-web/pkg/apiclient"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

type CatalogService interface {
	// ActiveServices is the customer-facing catalog.
	ActiveServices(ctx context.Context) ([]entity.Service, error)

	CreateService(ctx context.Context, req *request.ServiceRequest, image *apiclient.FormFile) (*entity.Service, error)
	UpdateService(ctx context.Context, id string, req *request.ServiceRequest, image *apiclient.FormFile) (*entity.Service, error)
	SetServiceActive(ctx context.Context, id string, active bool) error
}

type catalogService struct {
	repo repository.ServiceRepository
	log  *zap.Logger
}

func NewCatalogService(repo repository.ServiceRepository, log *zap.Logger) CatalogService {
	return &catalogService{
		repo: repo,
		log:  log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) ActiveServices(ctx context.Context) ([]entity.Service, error) {
	services, err := s.repo.List(ctx, repository.ServiceQuery{})
	if err != nil {
		return nil, err
	}
	// the backend filters too, but an inactive service must never be offered
	return entity.ActiveServices(services), nil
}

func (s *catalogService) CreateService(ctx context.Context, req *request.ServiceRequest, image *apiclient.FormFile) (*entity.Service, error) {
	in, err := serviceInput(req, image)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		s.log.Warn("Create service failed", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *catalogService) UpdateService(ctx context.Context, id string, req *request.ServiceRequest, image *apiclient.FormFile) (*entity.Service, error) {
	in, err := serviceInput(req, image)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if apiclient.IsNotFound(err) {
			return nil, ErrServiceNotFound
		}
		s.log.Warn("Update service failed", zap.String("service_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) SetServiceActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if apiclient.IsNotFound(err) {
			return ErrServiceNotFound
		}
		return err
	}

	s.log.Info("Service availability changed", zap.String("service_id", id), zap.Bool("active", active))
	return nil
}

func serviceInput(req *request.ServiceRequest, image *apiclient.FormFile) (repository.ServiceInput, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return repository.ServiceInput{}, validationFailed(errs)
	}

	return repository.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Duration:    req.Duration,
		Image:       image,
	}, nil
}
