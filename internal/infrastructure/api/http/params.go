package http

const (
	GatewayParam       = "gateway"
	TransactionIDParam = "transactionID"
)
