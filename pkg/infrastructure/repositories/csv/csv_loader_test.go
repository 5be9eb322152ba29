package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplysim/pkg/domain/entities"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, ProductsFile, `id,name,category,unit_weight_kg,unit_cost,unit_price,lead_time_days,safety_stock,reorder_point,target_stock,lot_size,initial_stock
P001,Hydraulic filter,Hydraulics,0.5,45.50,68.25,3,200,400,800,640,1280
P002,Pump,Equipment,12,320.00,480.00,5,150,300,600,480,960
`)
	writeFile(t, dir, CustomersFile, `id,name,segment,frequency,wait_probability,credit_limit
C01,Mining Co,Corporate,high,0.95,50000
C02,Builders,Mid-size,very_high,0.6,
`)
	writeFile(t, dir, ZonesFile, "id,name\nZ01,North\nZ02,South\n")
	writeFile(t, dir, FleetFile, "id,type,capacity_kg,trip_cost\nV-001,Truck 5t,5000,150\nV-004,Van 1t,1000,80\n")
	return dir
}

func TestLoader_LoadCatalog(t *testing.T) {
	catalog, err := NewLoader().LoadCatalog(writeCatalog(t))
	require.NoError(t, err)

	products := catalog.GetAllProducts()
	require.Len(t, products, 2)
	assert.Equal(t, entities.ProductID("P001"), products[0].ID)
	assert.Equal(t, 0.5, products[0].UnitWeightKg)
	assert.Equal(t, "45.5", products[0].UnitCost.String())
	assert.Equal(t, entities.Quantity(400), products[0].ReorderPoint)
	assert.Equal(t, entities.Quantity(1280), products[0].InitialStock)

	c, err := catalog.GetCustomer("C02")
	require.NoError(t, err)
	assert.Equal(t, entities.FrequencyVeryHigh, c.Frequency)
	assert.True(t, c.CreditLimit.IsZero())

	assert.Len(t, catalog.GetAllZones(), 2)
	fleet := catalog.GetFleet()
	require.Len(t, fleet, 2)
	assert.Equal(t, 1000.0, fleet[1].CapacityKg)
}

func TestLoader_Errors(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		content string
		load    func(string) error
		want    string
	}{
		{
			name:    "header mismatch",
			content: "id,title\nZ01,North\n",
			load:    func(p string) error { _, err := loader.LoadZones(p); return err },
			want:    "header mismatch",
		},
		{
			name:    "no data rows",
			content: "id,name\n",
			load:    func(p string) error { _, err := loader.LoadZones(p); return err },
			want:    "at least one data row",
		},
		{
			name:    "bad capacity",
			content: "id,type,capacity_kg,trip_cost\nV-1,Truck,heavy,150\n",
			load:    func(p string) error { _, err := loader.LoadFleet(p); return err },
			want:    "row 2: invalid capacity_kg",
		},
		{
			name:    "reorder below safety",
			content: "id,name,category,unit_weight_kg,unit_cost,unit_price,lead_time_days,safety_stock,reorder_point,target_stock,lot_size,initial_stock\nP1,X,Y,1,1,2,1,50,10,100,10,0\n",
			load:    func(p string) error { _, err := loader.LoadProducts(p); return err },
			want:    "reorder point 10 cannot be below safety stock 50",
		},
		{
			name:    "unknown frequency",
			content: "id,name,segment,frequency,wait_probability,credit_limit\nC1,X,Y,sometimes,0.5,0\n",
			load:    func(p string) error { _, err := loader.LoadCustomers(p); return err },
			want:    "unknown purchase frequency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "table.csv", tt.content)
			err := tt.load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadCatalog(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open products file")
}
