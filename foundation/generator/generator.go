// Package generator produces synthetic supply chain journeys for seeding and
// demonstrating the ledger.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/ardanlabs/provenance/foundation/blockchain/database"
	"github.com/google/uuid"
)

// StatusFlow is the ordered set of events every generated product goes
// through.
var StatusFlow = []string{
	"manufactured",
	"quality_check_passed",
	"shipped_to_distribution",
	"arrived_at_distribution",
	"shipped_to_retail",
	"arrived_at_retail",
	"sold_to_customer",
}

// EndCustomer is the receiving party of a sale.
const EndCustomer = "End Customer"

// Site is a named party with a fixed position.
type Site struct {
	Name string
	Lat  float64
	Lng  float64
}

// Product describes the kind of item being tracked.
type Product struct {
	Name     string
	SKU      string
	Category string
}

var (
	manufacturers = []Site{
		{Name: "Factory A", Lat: 31.2304, Lng: 121.4737},
		{Name: "Factory B", Lat: 22.5431, Lng: 114.0579},
	}

	distributors = []Site{
		{Name: "Distribution Center 1", Lat: 34.0522, Lng: -118.2437},
		{Name: "Distribution Center 2", Lat: 40.7128, Lng: -74.0060},
	}

	retailers = []Site{
		{Name: "Retail Store X", Lat: 37.7749, Lng: -122.4194},
		{Name: "Retail Store Y", Lat: 41.8781, Lng: -87.6298},
	}

	products = []Product{
		{Name: "Laptop", SKU: "TECH-LP", Category: "Electronics"},
		{Name: "Smartphone", SKU: "TECH-SP", Category: "Electronics"},
		{Name: "Tablet", SKU: "TECH-TB", Category: "Electronics"},
		{Name: "Headphones", SKU: "TECH-HP", Category: "Electronics"},
	}
)

// =============================================================================

// Generator produces journeys from its own source of randomness. A Generator
// is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// New constructs a generator. The same seed always produces the same
// journeys for the same start times.
func New(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Journey produces the seven events of one product starting after the
// specified time. Each event happens 4 to 48 hours after the previous one.
func (g *Generator) Journey(start time.Time) []database.Transaction {
	product := products[g.rnd.Intn(len(products))]
	productID := g.uuid()

	manufacturer := manufacturers[g.rnd.Intn(len(manufacturers))]
	distributor := distributors[g.rnd.Intn(len(distributors))]
	retailer := retailers[g.rnd.Intn(len(retailers))]

	current := start
	journey := make([]database.Transaction, 0, len(StatusFlow))

	for _, status := range StatusFlow {
		current = current.Add(time.Duration(4+g.rnd.Intn(45)) * time.Hour)

		var site Site
		var from, to string

		switch status {
		case "manufactured", "quality_check_passed":
			site, from, to = manufacturer, manufacturer.Name, manufacturer.Name

		case "shipped_to_distribution", "arrived_at_distribution":
			site, from, to = leg(status, manufacturer, distributor), manufacturer.Name, distributor.Name

		case "shipped_to_retail", "arrived_at_retail":
			site, from, to = leg(status, distributor, retailer), distributor.Name, retailer.Name

		default:
			site, from, to = retailer, retailer.Name, EndCustomer
		}

		additional := map[string]any{
			"batch_id": fmt.Sprintf("BATCH-%d", 1000+g.rnd.Intn(9000)),
		}
		if strings.HasPrefix(status, "shipped") {
			additional["temperature"] = round1(18 + g.rnd.Float64()*4)
			additional["humidity"] = round1(45 + g.rnd.Float64()*10)
		}
		if strings.HasPrefix(status, "quality_check") {
			additional["inspection_id"] = g.uuid()
		}

		journey = append(journey, database.Transaction{
			ProductID:       productID,
			ProductName:     product.Name,
			ProductSKU:      product.SKU,
			ProductCategory: product.Category,
			From:            from,
			To:              to,
			Status:          status,
			Timestamp:       database.ToEpoch(current),
			Location:        map[string]any{"lat": site.Lat, "lng": site.Lng},
			AdditionalData:  additional,
		})
	}

	return journey
}

// Products produces the journeys of n products, each starting 1 to 30 days
// ago, merged into one sequence ordered by timestamp.
func (g *Generator) Products(n int) []database.Transaction {
	var all []database.Transaction
	for range n {
		start := g.now().Add(-time.Duration(1+g.rnd.Intn(30)) * 24 * time.Hour)
		all = append(all, g.Journey(start)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp < all[j].Timestamp
	})

	return all
}

// =============================================================================

// leg returns where a product is on the way between two sites. A shipment
// is half way, an arrival is at the destination.
func leg(status string, from Site, to Site) Site {
	if strings.HasPrefix(status, "arrived") {
		return to
	}

	return Interpolate(from, to, 0.5)
}

// Interpolate returns the in transit position between two sites at the
// specified progress.
func Interpolate(from Site, to Site, progress float64) Site {
	return Site{
		Name: "In Transit",
		Lat:  from.Lat + (to.Lat-from.Lat)*progress,
		Lng:  from.Lng + (to.Lng-from.Lng)*progress,
	}
}

func (g *Generator) uuid() string {
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
