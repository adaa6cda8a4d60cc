package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// MockProducts returns a fresh copy of the built-in Mochi & Co. catalog.
func MockProducts() []Product {
	image := func(n int) string {
		return "https://picsum.photos/400/400?random=" + strconv.Itoa(n)
	}
	return []Product{
		{
			ID:          1,
			Name:        "Cloud Pillow",
			Price:       decimal.NewFromInt(24),
			Category:    "Home",
			Image:       image(1),
			Description: "Softer than a daydream. This plush cloud pillow is perfect for naps.",
			Reviews: []Review{
				{ID: "1", Author: "Sophie", Rating: 5, Comment: "Literally like sleeping on a cloud!", Date: "2023-10-12"},
				{ID: "2", Author: "Kai", Rating: 4, Comment: "Super cute, but smaller than expected.", Date: "2023-11-05"},
			},
		},
		{
			ID:          2,
			Name:        "Peach Tea Set",
			Price:       decimal.NewFromInt(45),
			Category:    "Kitchen",
			Image:       image(2),
			Description: "Ceramic tea set painted with delicate peaches. Serves two.",
			Reviews:     []Review{},
		},
		{
			ID:          3,
			Name:        "Pastel Planner",
			Price:       decimal.NewFromInt(18),
			Category:    "Stationery",
			Image:       image(3),
			Description: "Get organized with this cute weekly planner. Includes stickers!",
			Reviews: []Review{
				{ID: "3", Author: "Emma", Rating: 5, Comment: "The stickers are adorable!", Date: "2023-09-20"},
			},
		},
		{
			ID:          4,
			Name:        "Succulent Pot",
			Price:       decimal.NewFromInt(12),
			Category:    "Home",
			Image:       image(4),
			Description: "A happy little face on a ceramic pot. Plant not included.",
			Reviews:     []Review{},
		},
		{
			ID:          5,
			Name:        "Berry Tote Bag",
			Price:       decimal.NewFromInt(22),
			Category:    "Accessories",
			Image:       image(5),
			Description: "Canvas tote featuring a strawberry embroidery. Very sturdy.",
			Reviews:     []Review{},
		},
		{
			ID:          6,
			Name:        "Moon Lamp",
			Price:       decimal.NewFromInt(35),
			Category:    "Lighting",
			Image:       image(6),
			Description: "Glows with a warm amber light. USB rechargeable.",
			Reviews: []Review{
				{ID: "4", Author: "Luna", Rating: 5, Comment: "Sets the perfect cozy mood.", Date: "2023-12-01"},
			},
		},
		{
			ID:          7,
			Name:        "Fuzzy Socks",
			Price:       decimal.NewFromInt(14),
			Category:    "Accessories",
			Image:       image(7),
			Description: "Keep your toes warm with these ultra-soft pastel socks.",
			Reviews:     []Review{},
		},
		{
			ID:          8,
			Name:        "Glass Water Bottle",
			Price:       decimal.NewFromInt(28),
			Category:    "Kitchen",
			Image:       image(8),
			Description: "Eco-friendly glass bottle with a silicone protective sleeve.",
			Reviews:     []Review{},
		},
	}
}
