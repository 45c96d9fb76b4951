package node

import "fmt"

// DeliveryMethod is the channel used to deliver a pairing or
// verification link to the subject's device.
type DeliveryMethod int

const (
	DeliveryQRCode DeliveryMethod = iota
	DeliveryPush
	DeliveryEmail
	DeliverySMS
)

func (m DeliveryMethod) String() string {
	switch m {
	case DeliveryQRCode:
		return "QR code"
	case DeliveryPush:
		return "Push notification"
	case DeliveryEmail:
		return "Email"
	case DeliverySMS:
		return "SMS"
	default:
		return fmt.Sprintf("DeliveryMethod(%d)", int(m))
	}
}

// notificationMethod returns the remote API channel name for methods
// delivered via the notification service.
func (m DeliveryMethod) notificationMethod() string {
	switch m {
	case DeliveryEmail:
		return "EMAIL"
	case DeliverySMS:
		return "SMS"
	default:
		return ""
	}
}

// Ordered delivery option sets presented by the selector. The selected
// option's ordinal index is the canonical persisted representation.
var (
	PairingDeliveryMethods      = []DeliveryMethod{DeliveryQRCode, DeliveryEmail, DeliverySMS}
	VerificationDeliveryMethods = []DeliveryMethod{DeliveryQRCode, DeliveryPush}
)

// methodAt resolves a persisted choice index back to its delivery method.
func methodAt(methods []DeliveryMethod, index int) (DeliveryMethod, error) {
	if index < 0 || index >= len(methods) {
		return 0, fmt.Errorf("delivery method index %d out of range", index)
	}
	return methods[index], nil
}

// choicePrompt builds the delivery-method selection prompt.
func choicePrompt(message string, methods []DeliveryMethod) ChoicePrompt {
	options := make([]string, len(methods))
	for i, m := range methods {
		options[i] = m.String()
	}
	return ChoicePrompt{Message: message, Options: options}
}
