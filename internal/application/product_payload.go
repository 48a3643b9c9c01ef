package application

import (
	"fmt"
	"strings"

	"ave-shopify-connector/internal/domain"

	"github.com/shopspring/decimal"
)

// RequestContext carries the pieces of the surrounding HTTP request the
// payload builder needs to turn relative image paths into absolute URLs.
// It is always passed explicitly; the builder reads no ambient state.
type RequestContext struct {
	Scheme   string
	Host     string
	BasePath string
}

// BaseURL returns the absolute root the request context describes.
func (r RequestContext) BaseURL() string {
	scheme := r.Scheme
	if scheme == "" {
		scheme = "http"
	}
	base := scheme + "://" + r.Host
	if r.BasePath != "" {
		base += "/" + strings.Trim(r.BasePath, "/")
	}
	return base
}

// ResolveImageURL turns a file-service relative path into an absolute URL
// under the request's base. Absolute URLs pass through untouched.
func (r RequestContext) ResolveImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	trimmed := strings.ReplaceAll(path, "\\", "/")
	for {
		switch {
		case strings.HasPrefix(trimmed, "../"):
			trimmed = trimmed[3:]
		case strings.HasPrefix(trimmed, "./"):
			trimmed = trimmed[2:]
		case strings.HasPrefix(trimmed, "/"):
			trimmed = trimmed[1:]
		default:
			return r.BaseURL() + "/" + trimmed
		}
	}
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"à", "a", "è", "e", "ì", "i", "ò", "o", "ù", "u",
	"ä", "a", "ë", "e", "ï", "i", "ö", "o", "ü", "u",
	"â", "a", "ê", "e", "î", "i", "ô", "o", "û", "u",
	"ñ", "n", "ç", "c",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
	"À", "A", "È", "E", "Ì", "I", "Ò", "O", "Ù", "U",
	"Ä", "A", "Ë", "E", "Ï", "I", "Ö", "O", "Ü", "U",
	"Â", "A", "Ê", "E", "Î", "I", "Ô", "O", "Û", "U",
	"Ñ", "N", "Ç", "C",
)

// Handle builds a Shopify handle from a product name: fold accents to
// ASCII, collapse every run of non-alphanumerics into a single hyphen, trim,
// lowercase. Deterministic for a given input.
func Handle(name string) string {
	folded := accentFolder.Replace(name)
	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// HandleWithRef appends the product ref for call sites that need the handle
// to be unique per catalog entry.
func HandleWithRef(name, ref string) string {
	handle := Handle(name)
	refPart := Handle(ref)
	if refPart == "" {
		return handle
	}
	if handle == "" {
		return refPart
	}
	return handle + "-" + refPart
}

// BuildProduct turns a CRM product record into the canonical store payload.
// Pure except for the explicit request context used to resolve image URLs.
func BuildProduct(in domain.ProductInput, rctx RequestContext) *domain.CanonicalProduct {
	status := domain.ProductStatusActive
	if in.Status == 1 {
		status = domain.ProductStatusDraft
	}

	body := in.Description
	if body == "" {
		body = "<strong>" + in.Name + "</strong>"
	}

	product := &domain.CanonicalProduct{
		ID:             in.ProductID,
		DropshippingID: in.DropshippingID,
		Title:          in.Name,
		Ref:            in.Ref,
		Handle:         HandleWithRef(in.Name, in.Ref),
		Price:          decimal.NewFromFloat(in.Suggested),
		Grams:          int(in.Weight),
		Stock:          in.Units,
		Vendor:         in.Brand,
		Category:       in.Category,
		Status:         status,
		BodyHTML:       body,
		Tags:           in.Tags,
	}

	product.Options, product.Variants = buildVariants(in)

	if src := rctx.ResolveImageURL(in.ImagePath); src != "" {
		product.Images = []domain.ProductImage{{
			Src:      src,
			Alt:      in.Name,
			Position: 1,
			Width:    600,
			Height:   600,
		}}
	}

	return product
}

// buildVariants constructs the option sets and variants together. Option
// values are de-duplicated per bucket in first-seen order, and each
// variant's option slots are filled positionally from its attribute
// insertion order, so the two structures stay index-coupled.
func buildVariants(in domain.ProductInput) ([]domain.ProductOption, []domain.CanonicalVariant) {
	if len(in.Variants) == 0 {
		// Shopify requires at least one variant and one option set.
		variant := domain.CanonicalVariant{
			Title:    in.Name,
			Price:    decimal.NewFromFloat(in.Suggested),
			SKU:      in.Ref,
			Position: 1,
			Option1:  "Default",
			Grams:    int(in.Weight),
			Stock:    in.Units,
		}
		option := domain.ProductOption{Name: "Default", Values: []string{"Default"}}
		return []domain.ProductOption{option}, []domain.CanonicalVariant{variant}
	}

	var optionOrder []string
	buckets := make(map[string]*domain.ProductOption)
	seen := make(map[string]map[string]bool)

	variants := make([]domain.CanonicalVariant, 0, len(in.Variants))
	for i, v := range in.Variants {
		var slots []string
		for _, attr := range v.Attributes {
			slots = append(slots, attr.Value)
			bucket, ok := buckets[attr.Key]
			if !ok {
				bucket = &domain.ProductOption{Name: attr.Key}
				buckets[attr.Key] = bucket
				seen[attr.Key] = make(map[string]bool)
				optionOrder = append(optionOrder, attr.Key)
			}
			if !seen[attr.Key][attr.Value] {
				seen[attr.Key][attr.Value] = true
				bucket.Values = append(bucket.Values, attr.Value)
			}
		}

		title := v.Name
		if title == "" {
			title = fmt.Sprintf("Variante %d", i+1)
		}
		price := in.Suggested
		if v.Price != nil {
			price = *v.Price
		}
		sku := v.SKU
		if sku == "" {
			sku = in.Ref
		}
		weight := in.Weight
		if v.Weight != nil {
			weight = *v.Weight
		}
		stock := in.Units
		if v.Stock != nil {
			stock = *v.Stock
		}

		variant := domain.CanonicalVariant{
			ID:             v.ID,
			Title:          title,
			Price:          decimal.NewFromFloat(price),
			SKU:            sku,
			Position:       i + 1,
			Grams:          int(weight),
			Stock:          stock,
			DropshippingID: v.DropshippingID,
		}
		if v.SuggestedPrice != nil {
			variant.CompareAtPrice = decimal.NewFromFloat(*v.SuggestedPrice)
		}
		if len(slots) > 0 {
			variant.Option1 = slots[0]
		}
		if len(slots) > 1 {
			variant.Option2 = slots[1]
		}
		if len(slots) > 2 {
			variant.Option3 = slots[2]
		}
		variants = append(variants, variant)
	}

	options := make([]domain.ProductOption, 0, len(optionOrder))
	for _, key := range optionOrder {
		options = append(options, *buckets[key])
	}
	return options, variants
}
