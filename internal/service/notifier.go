package service

// Notifier is the optional in-process real-time side channel. Connected UI
// clients see changes immediately, independent of webhook delivery; emission
// is best-effort and never part of the delivery guarantee.
type Notifier interface {
	EmitOrderEvent(merchantID, customerID string, payload map[string]interface{})
	EmitProductEvent(merchantID, productID string, payload map[string]interface{})
	EmitCashbackEvent(merchantID, customerID string, payload map[string]interface{})
	SendMerchantUpdate(merchantID string, payload map[string]interface{})
}

// NopNotifier is the default when no real-time channel is wired.
type NopNotifier struct{}

func (NopNotifier) EmitOrderEvent(merchantID, customerID string, payload map[string]interface{}) {}
func (NopNotifier) EmitProductEvent(merchantID, productID string, payload map[string]interface{}) {}
func (NopNotifier) EmitCashbackEvent(merchantID, customerID string, payload map[string]interface{}) {
}
func (NopNotifier) SendMerchantUpdate(merchantID string, payload map[string]interface{}) {}
