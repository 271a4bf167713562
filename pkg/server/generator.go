package server

import (
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/plinphon/FaultyAPI/pkg/orders"
)

// products is the catalog fake orders bill against.
var products = []struct {
	name      string
	unitPrice float64
}{
	{"Cloud Storage - Standard Tier", 0.023},
	{"Cloud Storage - Coldline", 0.007},
	{"Compute vCPU-hours", 0.041},
	{"Managed DB - Small", 29.0},
	{"Managed DB - Medium", 99.0},
	{"Edge CDN GB", 0.08},
	{"Support Plan - Silver", 199.0},
	{"Support Plan - Gold", 799.0},
}

// MakeOrder builds the fake order for an item id. The faker is seeded with
// the id, so every field except created_at is identical across calls and
// across processes.
func MakeOrder(itemID int) orders.Order {
	f := gofakeit.New(int64(itemID))

	accountID := f.Number(10000, 99999)
	company := f.Company()
	contact := orders.Contact{
		Name:    f.Name(),
		Email:   f.Email(),
		Phone:   f.Phone(),
		Country: f.Country(),
	}

	nLines := f.Number(1, 3)
	lines := make([]orders.LineItem, 0, nLines)
	var subtotal float64
	for i := 0; i < nLines; i++ {
		product := products[f.Number(0, len(products)-1)]
		qty := f.Number(1, 50)
		amount := round2(product.unitPrice * float64(qty))
		subtotal += amount
		lines = append(lines, orders.LineItem{
			SKU:        f.Numerify(f.Lexify("SKU-????-#####")),
			Name:       product.name,
			Qty:        qty,
			UnitPrice:  round4(product.unitPrice),
			Amount:     amount,
			UsageMonth: usageDate(f),
		})
	}

	currency := orders.Currencies[f.Number(0, len(orders.Currencies)-1)]
	taxRate := 0.20
	if currency == orders.CurrencyUSD {
		taxRate = 0.07
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * taxRate)
	total := round2(subtotal + tax)

	return orders.Order{
		OrderID:   itemID,
		AccountID: accountID,
		Company:   company,
		Contact:   contact,
		Status:    orders.Statuses[f.Number(0, len(orders.Statuses)-1)],
		Currency:  currency,
		Lines:     lines,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Source:    "mock",
	}
}

// usageDate picks a billing date within the current year.
func usageDate(f *gofakeit.Faker) string {
	year := time.Now().Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return f.DateRange(start, end).Format("2006-01-02")
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
