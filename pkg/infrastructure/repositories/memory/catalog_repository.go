package memory

import (
	"fmt"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
)

// Catalog provides in-memory master data storage
type Catalog struct {
	products     []entities.Product
	productsMap  map[entities.ProductID]int
	customers    []entities.Customer
	customersMap map[entities.CustomerID]int
	zones        []entities.Zone
	zonesMap     map[entities.ZoneID]int
	fleet        []entities.Vehicle
}

// NewCatalog creates a new empty in-memory catalog
func NewCatalog() *Catalog {
	return &Catalog{
		productsMap:  make(map[entities.ProductID]int),
		customersMap: make(map[entities.CustomerID]int),
		zonesMap:     make(map[entities.ZoneID]int),
	}
}

// Verify interface compliance
var _ repositories.Catalog = (*Catalog)(nil)

// LoadProducts loads products into the catalog, rejecting duplicates
func (c *Catalog) LoadProducts(products []*entities.Product) error {
	for _, p := range products {
		if _, exists := c.productsMap[p.ID]; exists {
			return fmt.Errorf("duplicate product: %s", p.ID)
		}
		c.productsMap[p.ID] = len(c.products)
		c.products = append(c.products, *p)
	}
	return nil
}

// LoadCustomers loads customers into the catalog, rejecting duplicates
func (c *Catalog) LoadCustomers(customers []*entities.Customer) error {
	for _, cu := range customers {
		if _, exists := c.customersMap[cu.ID]; exists {
			return fmt.Errorf("duplicate customer: %s", cu.ID)
		}
		c.customersMap[cu.ID] = len(c.customers)
		c.customers = append(c.customers, *cu)
	}
	return nil
}

// LoadZones loads zones into the catalog, rejecting duplicates
func (c *Catalog) LoadZones(zones []*entities.Zone) error {
	for _, z := range zones {
		if _, exists := c.zonesMap[z.ID]; exists {
			return fmt.Errorf("duplicate zone: %s", z.ID)
		}
		c.zonesMap[z.ID] = len(c.zones)
		c.zones = append(c.zones, *z)
	}
	return nil
}

// LoadFleet loads vehicles into the catalog, rejecting duplicates
func (c *Catalog) LoadFleet(vehicles []*entities.Vehicle) error {
	seen := make(map[entities.VehicleID]bool, len(c.fleet)+len(vehicles))
	for _, v := range c.fleet {
		seen[v.ID] = true
	}
	for _, v := range vehicles {
		if seen[v.ID] {
			return fmt.Errorf("duplicate vehicle: %s", v.ID)
		}
		seen[v.ID] = true
		c.fleet = append(c.fleet, *v)
	}
	return nil
}

// GetProduct returns product master data
func (c *Catalog) GetProduct(id entities.ProductID) (*entities.Product, error) {
	index, exists := c.productsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownProduct, id)
	}
	return &c.products[index], nil
}

// GetAllProducts returns all products in load order
func (c *Catalog) GetAllProducts() []*entities.Product {
	products := make([]*entities.Product, 0, len(c.products))
	for i := range c.products {
		products = append(products, &c.products[i])
	}
	return products
}

// GetCustomer returns customer master data
func (c *Catalog) GetCustomer(id entities.CustomerID) (*entities.Customer, error) {
	index, exists := c.customersMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownCustomer, id)
	}
	return &c.customers[index], nil
}

// GetAllCustomers returns all customers in load order
func (c *Catalog) GetAllCustomers() []*entities.Customer {
	customers := make([]*entities.Customer, 0, len(c.customers))
	for i := range c.customers {
		customers = append(customers, &c.customers[i])
	}
	return customers
}

// GetZone returns a zone by id
func (c *Catalog) GetZone(id entities.ZoneID) (*entities.Zone, error) {
	index, exists := c.zonesMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownZone, id)
	}
	return &c.zones[index], nil
}

// GetAllZones returns all zones in load order
func (c *Catalog) GetAllZones() []*entities.Zone {
	zones := make([]*entities.Zone, 0, len(c.zones))
	for i := range c.zones {
		zones = append(zones, &c.zones[i])
	}
	return zones
}

// GetFleet returns the vehicle fleet in load order
func (c *Catalog) GetFleet() []*entities.Vehicle {
	fleet := make([]*entities.Vehicle, 0, len(c.fleet))
	for i := range c.fleet {
		fleet = append(fleet, &c.fleet[i])
	}
	return fleet
}
