package entity

// Service is a car-wash offering from the catalog.
type Service struct {
	Base
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// ActiveServices drops services that must not be offered to customers.
func ActiveServices(services []Service) []Service {
	active := make([]Service, 0, len(services))
	for _, s := range services {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}
