package stores

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Bangkok is the display zone for times in assistant context.
var Bangkok = time.FixedZone("ICT", 7*60*60)

var (
	vehicleKeywords = []string{
		"รถ", "ว่าง", "เช่า", "ยานพาหนะ", "กระบะ", "รถตู้", "รถบรรทุก",
		"vehicle", "truck", "van", "rent", "available", "fleet",
	}
	reservationKeywords = []string{
		"จอง", "การจอง", "รับรถ", "คืนรถ", "นัด", "ลูกค้า",
		"reservation", "booking", "book", "pickup", "schedule",
	}
	// A plate must not continue a preceding word, e.g. "ทะเบียน 1กค 9012"
	// yields "1กค 9012" and not "น 1".
	platePattern = regexp.MustCompile(`(?:^|[^\p{Thai}\p{L}\d])(\d?[ก-ฮ]{1,3}[\s-]?\d{1,4}|[A-Za-z]{1,3}-\d{1,4})`)
)

const maxPlateLookups = 3

// ContextLookup builds a bounded free-text snapshot of fleet and reservation
// data relevant to a user query.
type ContextLookup struct {
	Store    OperationalStore
	MaxRows  int
	MaxChars int
	Now      func() time.Time
}

// NewContextLookup creates a lookup over store. Non-positive bounds fall back
// to 5 rows per section and 2000 characters in total.
func NewContextLookup(store OperationalStore, maxRows, maxChars int) *ContextLookup {
	if maxRows <= 0 {
		maxRows = 5
	}
	if maxChars <= 0 {
		maxChars = 2000
	}
	return &ContextLookup{Store: store, MaxRows: maxRows, MaxChars: maxChars, Now: time.Now}
}

// RelevantContext implements sessions.ContextProvider.
func (c *ContextLookup) RelevantContext(ctx context.Context, query string) (string, error) {
	var sections []string

	counts, err := c.Store.CountVehiclesByStatus(ctx)
	if err != nil {
		return "", err
	}
	sections = append(sections, fleetSummary(counts))

	for _, plate := range findPlates(query) {
		v, err := c.Store.VehicleByPlate(ctx, plate)
		if err != nil {
			return "", err
		}
		if v != nil {
			sections = append(sections, "ข้อมูลรถทะเบียน "+v.Plate+":\n"+vehicleLine(*v))
		}
	}

	lower := strings.ToLower(query)
	if containsAny(lower, vehicleKeywords) {
		vehicles, err := c.Store.AvailableVehicles(ctx, c.MaxRows)
		if err != nil {
			return "", err
		}
		sections = append(sections, availableSection(vehicles))
	}
	if containsAny(lower, reservationKeywords) {
		res, err := c.Store.UpcomingReservations(ctx, c.Now(), c.MaxRows)
		if err != nil {
			return "", err
		}
		sections = append(sections, reservationSection(res))
	}

	return truncateRunes(strings.Join(sections, "\n\n"), c.MaxChars), nil
}

func fleetSummary(counts map[string]int64) string {
	var total int64
	for _, n := range counts {
		total += n
	}
	return fmt.Sprintf("สรุปยานพาหนะ: ทั้งหมด %d คัน (ว่าง %d, ถูกเช่า %d, ซ่อมบำรุง %d)",
		total, counts[VehicleAvailable], counts[VehicleRented], counts[VehicleMaintenance])
}

func availableSection(vehicles []Vehicle) string {
	if len(vehicles) == 0 {
		return "รถที่ว่างพร้อมให้เช่า: ไม่มี"
	}
	lines := []string{"รถที่ว่างพร้อมให้เช่า:"}
	for _, v := range vehicles {
		lines = append(lines, vehicleLine(v))
	}
	return strings.Join(lines, "\n")
}

func vehicleLine(v Vehicle) string {
	return fmt.Sprintf("- %s %s (%s) สถานะ %s ที่ %s ราคา %.0f บาท/วัน",
		v.Plate, v.Name, v.Type, v.Status, v.Location, v.DailyRate)
}

func reservationSection(res []Reservation) string {
	if len(res) == 0 {
		return "การจองที่กำลังจะถึง: ไม่มี"
	}
	lines := []string{"การจองที่กำลังจะถึง:"}
	for _, r := range res {
		lines = append(lines, fmt.Sprintf("- %s ลูกค้า %s รถ %s เส้นทาง %s → %s รับ %s คืน %s สถานะ %s",
			r.Code, r.CustomerName, r.Vehicle.Plate, r.Origin, r.Destination,
			r.PickupAt.In(Bangkok).Format("2006-01-02 15:04"),
			r.ReturnAt.In(Bangkok).Format("2006-01-02 15:04"),
			r.Status))
	}
	return strings.Join(lines, "\n")
}

func findPlates(query string) []string {
	matches := platePattern.FindAllStringSubmatch(query, -1)
	seen := make(map[string]bool, len(matches))
	var plates []string
	for _, m := range matches {
		p := NormalizePlate(m[1])
		if seen[p] {
			continue
		}
		seen[p] = true
		plates = append(plates, p)
		if len(plates) == maxPlateLookups {
			break
		}
	}
	return plates
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
