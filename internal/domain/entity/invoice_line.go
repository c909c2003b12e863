package entity

// OutstandingInvoiceLine saldo pendiente de una factura del cliente.
// El monto llega como texto: nulo o no numérico cuenta como cero al sumar.
type OutstandingInvoiceLine struct {
	InvoiceID         string
	OwnerIdentityID   string
	OutstandingAmount *string
}
