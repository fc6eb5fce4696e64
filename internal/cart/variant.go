package cart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
)

// NormalizeSelection validates a variant selection against the product's axes
// and returns the canonical merge key plus a display label. The key is
// axis-sorted ("Color:Red|Size:M") so the same selection always merges onto
// the same cart line regardless of the order the client sent it in. Products
// without variants get an empty key.
func NormalizeSelection(product *models.Product, selections map[string]string) (string, string, error) {
	if len(product.Variants) == 0 {
		if len(selections) > 0 {
			return "", "", fmt.Errorf("product has no variants")
		}
		return "", "", nil
	}

	axes := make(map[string][]string, len(product.Variants))
	order := make([]string, 0, len(product.Variants))
	for _, variant := range product.Variants {
		axes[variant.Name] = variant.Options
		order = append(order, variant.Name)
	}

	for name := range selections {
		if _, ok := axes[name]; !ok {
			return "", "", fmt.Errorf("unknown variant %q", name)
		}
	}

	labelParts := make([]string, 0, len(order))
	keyParts := make([]string, 0, len(order))
	for _, name := range order {
		choice, ok := selections[name]
		if !ok || strings.TrimSpace(choice) == "" {
			return "", "", fmt.Errorf("variant %q not selected", name)
		}
		choice = strings.TrimSpace(choice)
		if !containsOption(axes[name], choice) {
			return "", "", fmt.Errorf("invalid option %q for variant %q", choice, name)
		}
		keyParts = append(keyParts, name+":"+choice)
		labelParts = append(labelParts, choice)
	}

	sort.Strings(keyParts)
	return strings.Join(keyParts, "|"), strings.Join(labelParts, " / "), nil
}

func containsOption(options []string, choice string) bool {
	for _, option := range options {
		if option == choice {
			return true
		}
	}
	return false
}
