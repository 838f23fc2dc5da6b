package models

import "strings"

// Mapping tables agreed with the gateways. Anything missing maps to pending.
var (
	pixStatuses = map[string]Status{
		"CONCLUIDA":                       StatusApproved,
		"REMOVIDA_PELO_USUARIO_RECEBEDOR": StatusRefused,
		"REMOVIDA_PELO_PSP":               StatusRefused,
		"ATIVA":                           StatusPending,
	}

	boletoStatuses = map[string]Status{
		"pago":       StatusApproved,
		"vencido":    StatusRefused,
		"cancelado":  StatusRefused,
		"registrado": StatusPending,
	}

	checkoutStatuses = map[int]Status{
		2:  StatusApproved,
		3:  StatusRefused,
		10: StatusRefused,
		11: StatusRefunded,
	}
)

// NormalizePixStatus maps a gateway A PIX status.
func NormalizePixStatus(native string) (Status, bool) {
	s, ok := pixStatuses[strings.ToUpper(strings.TrimSpace(native))]
	if !ok {
		return StatusPending, false
	}
	return s, true
}

// NormalizeBoletoStatus maps a gateway A boleto status.
func NormalizeBoletoStatus(native string) (Status, bool) {
	s, ok := boletoStatuses[strings.ToLower(strings.TrimSpace(native))]
	if !ok {
		return StatusPending, false
	}
	return s, true
}

// NormalizeCheckoutStatus maps a gateway B numeric status.
func NormalizeCheckoutStatus(code int) (Status, bool) {
	s, ok := checkoutStatuses[code]
	if !ok {
		return StatusPending, false
	}
	return s, true
}

// Normalize maps native to a canonical status for the given gateway and
// payment method. The second result is false when the value was not found in
// any table; the status is then pending, never a terminal guess.
func Normalize(gateway Gateway, method PaymentMethod, native NativeStatus) (Status, bool) {
	switch gateway {
	case GatewayBank:
		switch method {
		case PaymentMethodPix:
			return NormalizePixStatus(native.String())
		case PaymentMethodBoleto:
			return NormalizeBoletoStatus(native.String())
		}
	case GatewayCheckout:
		code, ok := native.code()
		if !ok {
			return StatusPending, false
		}
		return NormalizeCheckoutStatus(code)
	}
	return StatusPending, false
}
