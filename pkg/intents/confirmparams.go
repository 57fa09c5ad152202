package intents

import "net/url"

// ConfirmParams are the caller-supplied parameters for confirming an
// intent. The caller owns the value; the SDK copies it and forces the
// SDK-usage flag before submission, never mutating the original.
type ConfirmParams struct {
	ClientSecret       string
	PaymentMethodID    string
	PaymentMethodData  url.Values
	ReturnURL          string
	SavePaymentMethod  bool
	UseSDK             bool
}

// ForSDKUse returns a copy of the params with the SDK-usage flag set,
// which tells the server to hand back SDK-consumable next actions.
func (p ConfirmParams) ForSDKUse() ConfirmParams {
	p.UseSDK = true
	if p.PaymentMethodData != nil {
		data := make(url.Values, len(p.PaymentMethodData))
		for k, v := range p.PaymentMethodData {
			data[k] = append([]string(nil), v...)
		}
		p.PaymentMethodData = data
	}
	return p
}

// Encode renders the params as the form body of a confirm request.
func (p ConfirmParams) Encode() url.Values {
	form := url.Values{}
	for k, v := range p.PaymentMethodData {
		form[k] = append([]string(nil), v...)
	}
	if p.PaymentMethodID != "" {
		form.Set("payment_method", p.PaymentMethodID)
	}
	if p.ReturnURL != "" {
		form.Set("return_url", p.ReturnURL)
	}
	if p.SavePaymentMethod {
		form.Set("save_payment_method", "true")
	}
	if p.UseSDK {
		form.Set("use_sdk", "true")
	}
	return form
}
