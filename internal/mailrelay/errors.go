package mailrelay

import "errors"

var (
	// ErrInvalidSubmission indicates a submission with a missing field or a
	// malformed address.
	ErrInvalidSubmission = errors.New("mailrelay: invalid submission")

	// ErrDelivery indicates the mail provider rejected or failed the send.
	ErrDelivery = errors.New("mailrelay: delivery failed")

	// ErrNotConfigured indicates the relay has no API key or recipient.
	ErrNotConfigured = errors.New("mailrelay: not configured")
)
