package devserver

import (
	"strings"

	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

var zoneKeywords = []struct {
	zone     string
	keywords []string
}{
	{logisticsdomain.ZoneNorth, []string{"norte", "usaquén", "calle 170"}},
	{logisticsdomain.ZoneSouth, []string{"sur", "usme", "bosa"}},
	{logisticsdomain.ZoneChapinero, []string{"chapinero", "teusaquillo", "calle 85"}},
	{logisticsdomain.ZoneWest, []string{"engativá", "fontibón", "calle 26"}},
}

// AssignZone picks the delivery zone of an address by keyword. Rules are
// checked in order; addresses matching none fall in CENTRO.
func AssignZone(address string) string {
	lower := strings.ToLower(address)
	for _, rule := range zoneKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.zone
			}
		}
	}
	return logisticsdomain.ZoneCenter
}
