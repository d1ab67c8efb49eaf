package sanitizer

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var supportedRegions = []string{
	"US",
	"GB",
	"IL",
}

// NormalizePhone converts a guest phone number to E.164. Numbers without an
// explicit country code are tried against the supported regions in order.
// A non-empty number that parses in none of them is an error: dropping it
// silently would cost the guest their SMS notifications.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return "", nil
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164), nil
		}
	}
	return "", fmt.Errorf("phone number %q is not valid in any supported region", phone)
}
