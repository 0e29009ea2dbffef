package repository

import (
	"context"
	"fmt"
	"strconv"

	"carwash-web/internal/data/entity"
	"carwash-web/pkg/apiclient"

	"go.uber.org/zap"
)

// ServiceQuery selects which services the backend lists. The backend returns
// only active services unless Active is "all".
type ServiceQuery struct {
	Active string `url:"active,omitempty"`
}

// ServiceInput is the multipart payload for create and update. Image is
// optional; a nil image keeps the current one on update.
type ServiceInput struct {
	Name        string
	Description string
	Price       float64
	Duration    int
	Image       *apiclient.FormFile
}

type ServiceRepository interface {
	List(ctx context.Context, q ServiceQuery) ([]entity.Service, error)
	Create(ctx context.Context, in ServiceInput) (*entity.Service, error)
	Update(ctx context.Context, id string, in ServiceInput) (*entity.Service, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type serviceRepository struct {
	api *apiclient.Client
	log *zap.Logger
}

func NewServiceRepository(api *apiclient.Client, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		api: api,
		log: log.With(zap.String("repository", "service")),
	}
}

func (r *serviceRepository) List(ctx context.Context, q ServiceQuery) ([]entity.Service, error) {
	var services []entity.Service
	if err := r.api.Get(ctx, "/services", q, &services); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	if services == nil {
		services = []entity.Service{}
	}
	return services, nil
}

func (r *serviceRepository) Create(ctx context.Context, in ServiceInput) (*entity.Service, error) {
	var created entity.Service
	if err := r.api.PostMultipart(ctx, "/services", serviceForm(in), &created); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	r.log.Info("Service created", zap.String("service_id", created.ID))
	return &created, nil
}

func (r *serviceRepository) Update(ctx context.Context, id string, in ServiceInput) (*entity.Service, error) {
	var updated entity.Service
	if err := r.api.PutMultipart(ctx, "/services/"+apiclient.PathEscape(id), serviceForm(in), &updated); err != nil {
		return nil, fmt.Errorf("update service %s: %w", id, err)
	}
	return &updated, nil
}

func (r *serviceRepository) SetActive(ctx context.Context, id string, active bool) error {
	action := "deactivate"
	if active {
		action = "activate"
	}
	if err := r.api.Patch(ctx, "/services/"+apiclient.PathEscape(id)+"/"+action, nil); err != nil {
		return fmt.Errorf("%s service %s: %w", action, id, err)
	}
	return nil
}

func serviceForm(in ServiceInput) *apiclient.MultipartForm {
	form := &apiclient.MultipartForm{}
	form.AddField("name", in.Name)
	form.AddField("description", in.Description)
	form.AddField("price", strconv.FormatFloat(in.Price, 'f', -1, 64))
	form.AddField("duration", strconv.Itoa(in.Duration))
	if in.Image != nil {
		form.AddFile(*in.Image)
	}
	return form
}
