package request

type AdminLoginRequest struct {
	Username string `schema:"username" json:"username" validate:"required"`
	Password string `schema:"password" json:"password" validate:"required"`
}

type CustomerLoginRequest struct {
	Email    string `schema:"email" json:"email" validate:"required,email"`
	Password string `schema:"password" json:"password" validate:"required"`
}

type CustomerRegisterRequest struct {
	Name     string `schema:"name" json:"name" validate:"required,min=2,max=100"`
	Contact  string `schema:"contact" json:"contact" validate:"required,min=7,max=20"`
	Email    string `schema:"email" json:"email" validate:"required,email"`
	Password string `schema:"password" json:"password" validate:"required,min=6"`
}
