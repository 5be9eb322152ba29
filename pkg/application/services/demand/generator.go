package demand

import (
	"fmt"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
)

// Random is the seedable source consumed by the generator. *rand.Rand from
// math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// Config bounds the random draws of the generator. Ranges are inclusive.
type Config struct {
	MinOrders   int `mapstructure:"min_orders" validate:"gte=0"`
	MaxOrders   int `mapstructure:"max_orders" validate:"gtefield=MinOrders"`
	MinQuantity int `mapstructure:"min_quantity" validate:"gte=1"`
	MaxQuantity int `mapstructure:"max_quantity" validate:"gtefield=MinQuantity"`
	MaxLines    int `mapstructure:"max_lines" validate:"gte=1"`
}

// DefaultConfig returns 10-15 orders per day of 1-3 lines with 5-50 units each
func DefaultConfig() Config {
	return Config{
		MinOrders:   10,
		MaxOrders:   15,
		MinQuantity: 5,
		MaxQuantity: 50,
		MaxLines:    3,
	}
}

// Generator produces the stochastic customer orders of a simulated day
type Generator struct {
	config   Config
	pool     []*entities.Customer
	products []entities.ProductID
	zones    []entities.ZoneID
	random   Random
}

// NewGenerator builds the weighted customer pool from the catalog. Each
// customer appears in the pool once per unit of its frequency weight.
func NewGenerator(catalog repositories.Catalog, config Config, random Random) (*Generator, error) {
	if config.MaxOrders < config.MinOrders || config.MinOrders < 0 {
		return nil, fmt.Errorf("invalid order range [%d, %d]", config.MinOrders, config.MaxOrders)
	}
	if config.MaxQuantity < config.MinQuantity || config.MinQuantity < 1 {
		return nil, fmt.Errorf("invalid quantity range [%d, %d]", config.MinQuantity, config.MaxQuantity)
	}
	if config.MaxLines < 1 {
		return nil, fmt.Errorf("max lines must be positive, got %d", config.MaxLines)
	}

	g := &Generator{config: config, random: random}

	for _, c := range catalog.GetAllCustomers() {
		for range c.Frequency.Weight() {
			g.pool = append(g.pool, c)
		}
	}
	for _, p := range catalog.GetAllProducts() {
		g.products = append(g.products, p.ID)
	}
	for _, z := range catalog.GetAllZones() {
		g.zones = append(g.zones, z.ID)
	}

	if len(g.pool) == 0 {
		return nil, fmt.Errorf("catalog has no customers")
	}
	if len(g.products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}
	if len(g.zones) == 0 {
		return nil, fmt.Errorf("catalog has no zones")
	}
	return g, nil
}

// PoolSize returns the number of entries in the weighted customer pool
func (g *Generator) PoolSize() int {
	return len(g.pool)
}

// Generate draws the orders for a day. Order count and line quantities are
// scaled by the scenario's demand multiplier for that day and truncated.
func (g *Generator) Generate(day int, scenario entities.Scenario) ([]*entities.CustomerOrder, error) {
	multiplier := scenario.DemandMultiplierOn(day)

	base := g.between(g.config.MinOrders, g.config.MaxOrders)
	count := int(float64(base) * multiplier)

	orders := make([]*entities.CustomerOrder, 0, count)
	for i := range count {
		customer := g.pool[g.random.IntN(len(g.pool))]
		zone := g.zones[g.random.IntN(len(g.zones))]

		lineCount := g.between(1, min(g.config.MaxLines, len(g.products)))
		products := g.pick(lineCount)

		lines := make([]entities.OrderLine, 0, lineCount)
		for _, id := range products {
			qty := entities.Quantity(float64(g.between(g.config.MinQuantity, g.config.MaxQuantity)) * multiplier)
			lines = append(lines, entities.OrderLine{Product: id, Quantity: max(qty, 1)})
		}

		order, err := entities.NewCustomerOrder(fmt.Sprintf("O%02d-%03d", day, i+1), customer.ID, zone, day, lines)
		if err != nil {
			return orders, fmt.Errorf("generate order %d for day %d: %w", i+1, day, err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// between draws uniformly from [lo, hi]
func (g *Generator) between(lo, hi int) int {
	return lo + g.random.IntN(hi-lo+1)
}

// pick draws n distinct products with a partial Fisher-Yates shuffle
func (g *Generator) pick(n int) []entities.ProductID {
	ids := append([]entities.ProductID(nil), g.products...)
	for i := range n {
		j := i + g.random.IntN(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:n]
}
