// Package nutrition provides the static nutrition fact table used to answer
// product nutrition questions with exact numbers instead of generated text.
package nutrition

import (
	"fmt"
	"strings"
)

// Fat breaks down fat content per serving, in grams.
type Fat struct {
	Total     float64 `json:"total"`
	Saturated float64 `json:"saturated,omitempty"`
}

// Info holds nutrition facts for one product variant.
type Info struct {
	Name          string  `json:"name"`
	ServingSize   string  `json:"servingSize"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein,omitempty"`
	Carbohydrates float64 `json:"carbohydrates,omitempty"`
	Sugars        float64 `json:"sugars,omitempty"`
	Fat           *Fat    `json:"fat,omitempty"`
	Variants      []Info  `json:"variants,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// Lookup returns nutrition facts for a product name, or nil when the product
// is unknown. The name is normalized (lowercased, brand prefix stripped);
// partial matches in either direction are accepted.
func Lookup(productName string) []Info {
	name := strings.TrimSpace(strings.NewReplacer("nestle", "", "nestlé", "").
		Replace(strings.ToLower(productName)))

	if infos, ok := table[name]; ok {
		return infos
	}
	for key, infos := range table {
		if strings.Contains(name, key) || strings.Contains(key, name) {
			return infos
		}
	}
	return nil
}

// FormatContext renders nutrition facts as a plain-text block for inclusion
// in a generator prompt.
func FormatContext(productName string, infos []Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NUTRITIONAL INFORMATION FOR %q:\n", strings.ToUpper(productName))
	for i, info := range infos {
		fmt.Fprintf(&b, "\nProduct Variant %d: %s\nServing Size: %s\nCalories: %g per serving\n",
			i+1, info.Name, info.ServingSize, info.Calories)
		if info.Protein > 0 {
			fmt.Fprintf(&b, "Protein: %gg\n", info.Protein)
		}
		if info.Carbohydrates > 0 {
			fmt.Fprintf(&b, "Carbohydrates: %gg\n", info.Carbohydrates)
		}
		if info.Sugars > 0 {
			fmt.Fprintf(&b, "Sugars: %gg\n", info.Sugars)
		}
		if info.Fat != nil {
			fmt.Fprintf(&b, "Total Fat: %gg\n", info.Fat.Total)
			if info.Fat.Saturated > 0 {
				fmt.Fprintf(&b, "Saturated Fat: %gg\n", info.Fat.Saturated)
			}
		}
		if len(info.Variants) > 0 {
			fmt.Fprintf(&b, "\nSub-variants within %s:\n", info.Name)
			for _, v := range info.Variants {
				fmt.Fprintf(&b, "- %s: %s, %g calories\n", v.Name, v.ServingSize, v.Calories)
			}
		}
	}
	return b.String()
}

var table = map[string][]Info{
	"kitkat": {
		{
			Name:          "KITKAT 4-Finger Wafer Bar, Milk Chocolate",
			ServingSize:   "45g",
			Calories:      230,
			Protein:       3,
			Carbohydrates: 27,
			Sugars:        21,
			Fat:           &Fat{Total: 12, Saturated: 7.5},
			Description:   "Four crisp wafer fingers covered in smooth milk chocolate",
		},
		{
			Name:          "KITKAT Valentine's Mini Chocolate Wafer Bars Pack of 30",
			ServingSize:   "36g (3 bars)",
			Calories:      180,
			Protein:       2.4,
			Carbohydrates: 21.6,
			Sugars:        16.8,
			Fat:           &Fat{Total: 9.6, Saturated: 6},
			Description:   "Mini KitKat bars perfect for sharing on Valentine's Day",
		},
		{
			Name:        "KITKAT Christmas Holiday Advent Calendar",
			ServingSize: "varies",
			Description: "Holiday advent calendar with various KitKat treats",
			Variants: []Info{
				{Name: "Kit Kat Characters", ServingSize: "8.2g (1 piece)", Calories: 45},
				{Name: "KitKat Bubbles", ServingSize: "7g (1 piece)", Calories: 40},
				{Name: "KitKat Santa", ServingSize: "29g (1 piece)", Calories: 160},
				{Name: "KitKat mini bar", ServingSize: "12g (1 piece)", Calories: 60},
			},
		},
		{
			Name:          "KITKAT Chunky Extreme Choc Wafer Bar",
			ServingSize:   "48g",
			Calories:      250,
			Protein:       3.5,
			Carbohydrates: 26,
			Sugars:        22,
			Fat:           &Fat{Total: 14, Saturated: 8.5},
			Description:   "Extra thick KitKat with more chocolate",
		},
	},
	"aero": {
		{
			Name:          "AERO Milk Chocolate Bar",
			ServingSize:   "40g",
			Calories:      220,
			Protein:       2.5,
			Carbohydrates: 24,
			Sugars:        23,
			Fat:           &Fat{Total: 12, Saturated: 7.5},
			Description:   "Smooth milk chocolate with unique bubbly texture",
		},
		{
			Name:          "AERO Truffle Salted Caramel",
			ServingSize:   "36g",
			Calories:      190,
			Protein:       2,
			Carbohydrates: 22,
			Sugars:        20,
			Fat:           &Fat{Total: 11, Saturated: 7},
			Description:   "Bubbly chocolate with salted caramel truffle center",
		},
		{
			Name:          "AERO Scoops Vanilla Bean",
			ServingSize:   "100ml",
			Calories:      135,
			Protein:       2,
			Carbohydrates: 18,
			Sugars:        15,
			Fat:           &Fat{Total: 6, Saturated: 4},
			Description:   "Vanilla ice cream with AERO bubbles",
		},
		{
			Name:          "AERO Scoops Double Chocolate",
			ServingSize:   "100ml",
			Calories:      145,
			Protein:       2.5,
			Carbohydrates: 19,
			Sugars:        16,
			Fat:           &Fat{Total: 7, Saturated: 4.5},
			Description:   "Chocolate ice cream with AERO bubbles",
		},
	},
	"coffee crisp": {
		{
			Name:          "COFFEE CRISP Chocolate Bar",
			ServingSize:   "50g",
			Calories:      260,
			Protein:       3,
			Carbohydrates: 34,
			Sugars:        26,
			Fat:           &Fat{Total: 12, Saturated: 7},
			Description:   "Light crispy wafers with coffee-flavoured cream covered in milk chocolate",
		},
	},
	"smarties": {
		{
			Name:          "SMARTIES Regular Box",
			ServingSize:   "45g",
			Calories:      220,
			Protein:       2.5,
			Carbohydrates: 32,
			Sugars:        30,
			Fat:           &Fat{Total: 10, Saturated: 6},
			Description:   "Colourful candy-coated milk chocolate",
		},
		{
			Name:          "SMARTIES Mini Box",
			ServingSize:   "15g",
			Calories:      73,
			Protein:       0.8,
			Carbohydrates: 10.6,
			Sugars:        10,
			Fat:           &Fat{Total: 3.3, Saturated: 2},
			Description:   "Colourful candy-coated milk chocolate in mini size",
		},
	},
	"quality street": {
		{
			Name:          "QUALITY STREET Holiday Gift Tin",
			ServingSize:   "4 pieces (32g)",
			Calories:      150,
			Protein:       1.5,
			Carbohydrates: 22,
			Sugars:        20,
			Fat:           &Fat{Total: 6.5, Saturated: 4},
			Description:   "Assorted chocolates and toffees in a gift tin",
		},
	},
	"turtles": {
		{
			Name:          "TURTLES Classic Recipe Holiday Gift Box",
			ServingSize:   "3 pieces (42g)",
			Calories:      220,
			Protein:       3,
			Carbohydrates: 19,
			Sugars:        18,
			Fat:           &Fat{Total: 15, Saturated: 7},
			Description:   "Pecan halves and smooth caramel covered in milk chocolate",
		},
	},
	"after eight": {
		{
			Name:          "AFTER EIGHT Thin Mints",
			ServingSize:   "2 pieces (16g)",
			Calories:      75,
			Protein:       0.5,
			Carbohydrates: 12,
			Sugars:        11,
			Fat:           &Fat{Total: 2.5, Saturated: 1.5},
			Description:   "Thin dark chocolate squares with mint fondant filling",
		},
	},
	"crunch": {
		{
			Name:          "CRUNCH Chocolate Bar",
			ServingSize:   "44g",
			Calories:      220,
			Protein:       3,
			Carbohydrates: 26,
			Sugars:        21,
			Fat:           &Fat{Total: 12, Saturated: 7},
			Description:   "Milk chocolate with crisped rice",
		},
	},
	"drumstick": {
		{
			Name:          "DRUMSTICK Classic Vanilla",
			ServingSize:   "1 cone (140ml)",
			Calories:      290,
			Protein:       4,
			Carbohydrates: 32,
			Sugars:        22,
			Fat:           &Fat{Total: 16, Saturated: 11},
			Description:   "Vanilla ice cream in a sugar cone with chocolate and peanuts",
		},
	},
}
