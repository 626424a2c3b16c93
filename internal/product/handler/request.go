package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abgdnv/inventory/internal/product/service"
)

// productRequest is the body of create and update requests.
// Quantity and price may arrive as JSON numbers or as numeric strings, as form inputs submit them.
type productRequest struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Quantity formInt   `json:"quantity"`
	Price    formFloat `json:"price"`
}

func (r productRequest) toCreateDto() service.ProductCreateDto {
	return service.ProductCreateDto{
		Name:     r.Name,
		Type:     r.Type,
		Quantity: int(r.Quantity),
		Price:    float64(r.Price),
	}
}

func (r productRequest) toUpdateDto(id string) service.ProductUpdateDto {
	return service.ProductUpdateDto{
		ID:       id,
		Name:     r.Name,
		Type:     r.Type,
		Quantity: int(r.Quantity),
		Price:    float64(r.Price),
	}
}

// formFloat is a float64 that also accepts numeric strings. A blank string is zero.
type formFloat float64

func (f *formFloat) UnmarshalJSON(data []byte) error {
	v, err := formNumber(data)
	if err != nil {
		return err
	}
	*f = formFloat(v)
	return nil
}

// formInt is an int that also accepts numeric strings. Fractions are rejected.
type formInt int

func (n *formInt) UnmarshalJSON(data []byte) error {
	v, err := formNumber(data)
	if err != nil {
		return err
	}
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return fmt.Errorf("%v is not a whole number", v)
	}
	*n = formInt(v)
	return nil
}

// formNumber decodes a JSON number or a string holding one.
func formNumber(data []byte) (float64, error) {
	if len(data) == 0 || data[0] != '"' {
		var v float64
		err := json.Unmarshal(data, &v)
		return v, err
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}
