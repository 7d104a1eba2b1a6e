package channel

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Channel Errors
// ---------------------------------------------------------------------------

var (
	// ErrChannelUnavailable is the root of every adapter failure: auth,
	// network, timeout, non-2xx responses and undecodable payloads.
	ErrChannelUnavailable = errors.New("channel: unavailable")

	ErrInvalidChannel        = errors.New("channel: invalid channel")
	ErrAdapterNotRegistered  = errors.New("channel: no adapter registered")
	ErrLocalChannelNoAdapter = errors.New("channel: PWA is the local source and has no adapter")
	ErrInvalidQuantity       = errors.New("channel: quantity cannot be negative")
	ErrEmptySKU              = errors.New("channel: sku is required")
)

// UnavailableError describes one failed adapter call.
type UnavailableError struct {
	Channel Channel
	Op      string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("channel %s: %s: unavailable", e.Channel, e.Op)
	}
	return fmt.Sprintf("channel %s: %s: %v", e.Channel, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *UnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrChannelUnavailable}
	}
	return []error{ErrChannelUnavailable, e.Err}
}

// Unavailable wraps err as an adapter failure for the given operation.
// An error that already is an UnavailableError is returned unchanged.
func Unavailable(ch Channel, op string, err error) error {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UnavailableError{Channel: ch, Op: op, Err: err}
}

// ---------------------------------------------------------------------------
// Channel
// ---------------------------------------------------------------------------

// Channel is a sales surface with its own view of inventory and orders
type Channel string

const (
	// PWA is the merchant's own storefront; its quantities are authoritative
	PWA Channel = "PWA"
	// Amazon is the Amazon marketplace (SP-API)
	Amazon Channel = "AMAZON"
	// Etsy is the Etsy marketplace (Open API v3)
	Etsy Channel = "ETSY"
)

// All returns every known channel, local first
func All() []Channel {
	return []Channel{PWA, Amazon, Etsy}
}

// RemoteChannels returns the channels reached through an adapter
func RemoteChannels() []Channel {
	return []Channel{Amazon, Etsy}
}

// IsValid returns true if the channel is known
func (c Channel) IsValid() bool {
	switch c {
	case PWA, Amazon, Etsy:
		return true
	default:
		return false
	}
}

// IsRemote returns true for marketplaces reached through an adapter
func (c Channel) IsRemote() bool {
	return c == Amazon || c == Etsy
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the channel
func (c Channel) DisplayName() string {
	switch c {
	case PWA:
		return "Storefront"
	case Amazon:
		return "Amazon"
	case Etsy:
		return "Etsy"
	default:
		return string(c)
	}
}

// Parse converts user input (case-insensitive) into a Channel
func Parse(s string) (Channel, error) {
	c := Channel(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, s)
	}
	return c, nil
}

// ParseList parses a list of channel names, dropping duplicates
func ParseList(values []string) ([]Channel, error) {
	seen := make(map[Channel]struct{}, len(values))
	result := make([]Channel, 0, len(values))
	for _, v := range values {
		c, err := Parse(v)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result, nil
}
