package catalog

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/catalog-view/internal/domain/product"
)

// decodePage parses a catalog response of the form
// {"products":[...],"total":N,"skip":N,"limit":N}. Unknown fields are
// skipped; products and total are required.
func decodePage(data []byte) (*product.Page, error) {
	var (
		page        product.Page
		hasProducts bool
		hasTotal    bool
	)

	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "products":
			hasProducts = true
			products, err := decodeProducts(d)
			if err != nil {
				return errors.Wrap(err, "products")
			}
			page.Products = products
		case "total":
			hasTotal = true
			total, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "total")
			}
			if total < 0 {
				return errors.Errorf("total: negative value %d", total)
			}
			page.Total = total
		case "skip":
			skip, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "skip")
			}
			page.Skip = skip
		case "limit":
			limit, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "limit")
			}
			page.Limit = limit
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return nil, err
	}
	// Only whitespace may follow the top-level object.
	switch err := d.Skip(); {
	case errors.Is(err, io.EOF):
	case err == nil:
		return nil, errors.New("unexpected trailing data")
	default:
		return nil, errors.Wrap(err, "unexpected trailing data")
	}

	if !hasProducts {
		return nil, errors.New("missing field products")
	}
	if !hasTotal {
		return nil, errors.New("missing field total")
	}
	return &page, nil
}

func decodeProducts(d *jx.Decoder) ([]product.Product, error) {
	products := make([]product.Product, 0)
	seen := make(map[string]struct{})

	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "[%d]", len(products))
		}
		if _, dup := seen[p.ID]; dup {
			return errors.Errorf("[%d]: duplicate id %q", len(products), p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, err
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var (
		p    product.Product
		seen = map[string]bool{}
	)

	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch k := string(key); k {
		case "id":
			seen[k] = true
			id, err := decodeID(d)
			if err != nil {
				return errors.Wrap(err, "id")
			}
			p.ID = id
		case "title":
			seen[k] = true
			title, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "title")
			}
			p.Title = title
		case "thumbnail":
			seen[k] = true
			thumb, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "thumbnail")
			}
			p.Thumbnail = thumb
		case "price":
			seen[k] = true
			price, err := decodePrice(d)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			p.Price = price
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return product.Product{}, err
	}

	for _, field := range []string{"id", "title", "thumbnail", "price"} {
		if !seen[field] {
			return product.Product{}, errors.Errorf("missing field %s", field)
		}
	}
	return p, nil
}

// decodeID accepts both numeric and string identifiers and keeps their
// literal text.
func decodeID(d *jx.Decoder) (string, error) {
	switch tt := d.Next(); tt {
	case jx.String:
		id, err := d.Str()
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", errors.New("empty value")
		}
		return id, nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", errors.Errorf("unexpected type %s", tt)
	}
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if tt := d.Next(); tt != jx.Number {
		return decimal.Decimal{}, errors.Errorf("unexpected type %s", tt)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	price, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, err
	}
	if price.IsNegative() {
		return decimal.Decimal{}, errors.Errorf("negative value %s", price)
	}
	return price, nil
}
