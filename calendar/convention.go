package calendar

import (
	"fmt"
	"strings"
)

// BusinessDayConvention rolls a date that falls on a holiday.
type BusinessDayConvention string

const (
	Unadjusted        BusinessDayConvention = "UNADJUSTED"
	Following         BusinessDayConvention = "FOLLOWING"
	ModifiedFollowing BusinessDayConvention = "MODIFIED_FOLLOWING"
	Preceding         BusinessDayConvention = "PRECEDING"
	ModifiedPreceding BusinessDayConvention = "MODIFIED_PRECEDING"
)

// ParseConvention accepts the enum spelling or a common short form ("MF", "F", "P").
func ParseConvention(s string) (BusinessDayConvention, error) {
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	switch v {
	case "", "F", string(Following):
		return Following, nil
	case "MF", "MODFOLLOWING", string(ModifiedFollowing):
		return ModifiedFollowing, nil
	case "P", string(Preceding):
		return Preceding, nil
	case "MP", string(ModifiedPreceding):
		return ModifiedPreceding, nil
	case "U", "NONE", string(Unadjusted):
		return Unadjusted, nil
	default:
		return "", fmt.Errorf("calendar: unknown business day convention %q", s)
	}
}
