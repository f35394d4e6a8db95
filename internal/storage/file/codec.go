package file

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/order"
)

// EncodeSnapshot writes an order snapshot as a JSON object. The same
// encoding is used for the document store and the order-ingest export
// format (one object per line).
func EncodeSnapshot(e *jx.Encoder, s order.Snapshot) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(s.ID.String()) })
		e.Field("customer_id", func(e *jx.Encoder) { e.Str(s.CustomerID.String()) })
		e.Field("submitted", func(e *jx.Encoder) { e.Bool(s.Submitted) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range s.Items {
					encodeItem(e, item)
				}
			})
		})
	})
}

func encodeItem(e *jx.Encoder, item order.ItemSnapshot) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product_id", func(e *jx.Encoder) { e.Str(item.ProductID) })
		e.Field("unit_price_minor", func(e *jx.Encoder) { e.Int64(item.UnitPriceMinor) })
		e.Field("currency", func(e *jx.Encoder) { e.Str(item.Currency) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int64(item.Quantity) })
	})
}

// DecodeSnapshot reads an order snapshot written by EncodeSnapshot.
func DecodeSnapshot(d *jx.Decoder) (order.Snapshot, error) {
	var s order.Snapshot
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			return decodeUUID(d, &s.ID)
		case "customer_id":
			return decodeUUID(d, &s.CustomerID)
		case "submitted":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			s.Submitted = v
			return nil
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				s.Items = append(s.Items, item)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return order.Snapshot{}, errors.Wrap(err, "decode order")
	}
	return s, nil
}

func decodeItem(d *jx.Decoder) (order.ItemSnapshot, error) {
	var item order.ItemSnapshot
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product_id":
			item.ProductID, err = d.Str()
		case "unit_price_minor":
			item.UnitPriceMinor, err = d.Int64()
		case "currency":
			item.Currency, err = d.Str()
		case "quantity":
			item.Quantity, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

func decodeUUID(d *jx.Decoder, dst *uuid.UUID) error {
	raw, err := d.Str()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return errors.Wrap(err, "parse uuid")
	}
	*dst = id
	return nil
}
