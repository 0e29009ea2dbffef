package request

// ServiceRequest is the catalog form. The image travels as a separate
// multipart file part. Price is a pointer so a blank input fails required
// instead of reading as a free service.
type ServiceRequest struct {
	Name        string   `schema:"name" validate:"required,max=100"`
	Description string   `schema:"description" validate:"required,max=2000"`
	Price       *float64 `schema:"price" validate:"required,gte=0"`
	Duration    int      `schema:"duration" validate:"gte=1,lte=600"`
}
