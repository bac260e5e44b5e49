package payment

import "github.com/matthieukhl/axoshard/internal/apperr"

// ErrGateway marks any failure reported by the payment processor.
var ErrGateway = apperr.New(apperr.KindGateway, "payment gateway error")

func gatewayError(err error) error {
	return apperr.Wrap(apperr.KindGateway, err, "payment gateway error")
}
