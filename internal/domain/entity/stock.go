package entity

import "time"

// WarehouseStock es el stock de bodega por variante; la cantidad repartible
// descuenta lo reservado.
type WarehouseStock struct {
	WarehouseCode string
	VariantCode   string
	StockQty      int64
	ReservedQty   int64
	UpdatedAt     time.Time
}

// Available devuelve la cantidad repartible (nunca negativa).
func (s *WarehouseStock) Available() int64 {
	if avail := s.StockQty - s.ReservedQty; avail > 0 {
		return avail
	}
	return 0
}

// StoreStock es el stock actual de una variante en una tienda (base STOCK).
type StoreStock struct {
	StoreCode   string
	VariantCode string
	StockQty    int64
	ReservedQty int64
	UpdatedAt   time.Time
}

// Available devuelve el stock disponible en tienda (nunca negativo).
func (s *StoreStock) Available() int64 {
	if avail := s.StockQty - s.ReservedQty; avail > 0 {
		return avail
	}
	return 0
}

// StoreSale es la venta agregada de una variante en una tienda dentro de la
// ventana consultada (base SALES y mezcla histórica talla/color).
type StoreSale struct {
	StoreCode   string
	VariantCode string
	QtySold     int64
}
