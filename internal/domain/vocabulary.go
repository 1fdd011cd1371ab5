package domain

import "strings"

// Categories, Seasons and Sizes are the values offered when editing an item.
// Items may still carry free-form values; these lists only seed pickers and
// normalise suggested attributes.
var Categories = []string{
	"T-Shirt", "Shirt", "Hoodie", "Sweater", "Jacket", "Coat",
	"Jeans", "Trousers", "Shorts", "Skirt",
	"Dress", "Suit",
	"Shoes", "Sneakers", "Boots",
	"Accessory", "Bag",
	"Sportswear", "Underwear",
	"Other",
}

var Seasons = []string{"All", "Summer", "Winter", "Spring", "Autumn"}

var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}

// Canonical returns the vocabulary entry equal to s ignoring case, or "" if
// none matches.
func Canonical(vocab []string, s string) string {
	s = strings.TrimSpace(s)
	for _, v := range vocab {
		if strings.EqualFold(v, s) {
			return v
		}
	}
	return ""
}
