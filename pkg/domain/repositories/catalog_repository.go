package repositories

import "github.com/vsinha/supplysim/pkg/domain/entities"

// Catalog provides read access to the static master data of a simulation run.
// Slices are returned in catalog order so that runs are reproducible.
type Catalog interface {
	GetProduct(id entities.ProductID) (*entities.Product, error)
	GetAllProducts() []*entities.Product
	GetCustomer(id entities.CustomerID) (*entities.Customer, error)
	GetAllCustomers() []*entities.Customer
	GetZone(id entities.ZoneID) (*entities.Zone, error)
	GetAllZones() []*entities.Zone
	GetFleet() []*entities.Vehicle
}
