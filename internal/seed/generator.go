package seed

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roach88/tcstore/internal/value"
)

// MaxCount bounds a single seed request.
const MaxCount = 100

const dateLayout = "2006-01-02"

var (
	counterparties = []string{"02519916", "02519917", "02519918", "02519919", "02519920"}
	books          = []string{"MEWEST01HS", "MEWEST02HS", "MEWEST03HS", "USEAST01HS", "USEAST02HS"}
	priceMakers    = []string{"kbagci", "vmenon", "nseeley"}
	notionals      = []int64{1000, 5000, 10000, 25000, 50000, 100000}
)

// Trade is one generated record.
type Trade struct {
	ID   string       `json:"id"`
	Data value.Object `json:"data"`
}

// Generator produces IR swap trades. The same seed and base date always
// yield the same trades. Not safe for concurrent use.
type Generator struct {
	src  *rand.ChaCha8
	rng  *rand.Rand
	base time.Time
}

// NewGenerator creates a generator. Dates are laid out from base.
func NewGenerator(seed uint64, base time.Time) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src), base: base.UTC()}
}

// Trades generates n trades, 1 <= n <= MaxCount.
func (g *Generator) Trades(n int) ([]Trade, error) {
	if n < 1 || n > MaxCount {
		return nil, fmt.Errorf("seed count %d out of range [1, %d]", n, MaxCount)
	}
	out := make([]Trade, 0, n)
	for i := 0; i < n; i++ {
		t, err := g.Trade(i)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Trade generates the trade at position index (used in label and comment).
func (g *Generator) Trade(index int) (Trade, error) {
	id, err := g.tradeID()
	if err != nil {
		return Trade{}, err
	}

	notional := pick(g.rng, notionals)
	fixedRate := g.uniform(2.5, 5.0)
	margin := g.uniform(-0.5, 0.5)
	periods := 1 + g.rng.IntN(6)

	start := g.base.AddDate(0, 0, g.rng.IntN(31))
	end := start.AddDate(0, 0, 30*periods)

	fixedSchedule := make(value.Array, 0, periods)
	floatSchedule := make(value.Array, 0, periods)
	for p := 0; p < periods; p++ {
		pStart := start.AddDate(0, 0, 30*p)
		pEnd := start.AddDate(0, 0, 30*(p+1))
		payment := pEnd.AddDate(0, 0, 2)

		interest := decimal.NewFromInt(-notional).
			Mul(fixedRate).
			Div(decimal.NewFromInt(100)).
			Mul(decimal.NewFromInt(30)).
			Div(decimal.NewFromInt(360)).
			Round(2)

		fixedSchedule = append(fixedSchedule, value.Object{
			"periodIndex": value.NewInt(int64(p)),
			"startDate":   date(pStart),
			"endDate":     date(pEnd),
			"paymentDate": date(payment),
			"rate":        value.NewNumber(fixedRate),
			"notional":    value.NewInt(-notional),
			"interest":    value.NewNumber(interest),
		})
		floatSchedule = append(floatSchedule, value.Object{
			"periodIndex": value.NewInt(int64(p)),
			"startDate":   date(pStart),
			"endDate":     date(pEnd),
			"ratesetDate": date(pEnd),
			"paymentDate": date(payment),
			"notional":    value.NewInt(notional),
			"margin":      value.NewNumber(margin),
			"index":       value.String("SOFR"),
			"tenor":       value.String("1D"),
		})
	}

	data := value.Object{
		"general": value.Object{
			"tradeId": value.String(id),
			"label":   value.String(fmt.Sprintf("IR Swap %d", index+1)),
			"transactionRoles": value.Object{
				"marketer":              value.Null{},
				"transactionOriginator": value.Null{},
				"priceMaker":            value.String(pick(g.rng, priceMakers)),
				"transactionAcceptor":   value.Null{},
			},
			"executionDetails": value.Object{
				"executionDateTime": value.String(g.base.Format(time.RFC3339)),
				"executionVenue": value.Object{
					"executionBrokeragePayer": value.String("wePay"),
					"executionVenueType":      value.String("OffFacility"),
					"executionBroker":         value.Null{},
				},
				"isOffMarketPrice": value.Bool(false),
			},
			"blockAllocationDetails": value.Null{},
		},
		"common": value.Object{
			"book":         value.String(pick(g.rng, books)),
			"tradeDate":    date(start),
			"inputDate":    date(start),
			"counterparty": value.String(pick(g.rng, counterparties)),
			"comment":      value.String(fmt.Sprintf("Auto-generated IR swap trade %d with %d monthly periods", index+1, periods)),
			"ddeEligible":  value.String("No"),
			"stp":          value.String("No"),
			"includeFeeEngine": value.Object{
				"allLegs": value.Bool(false),
				"nearLeg": value.Bool(false),
				"farLeg":  value.Bool(false),
				"none":    value.Bool(true),
			},
			"events":         value.Array{},
			"fees":           value.Array{},
			"ISDADefinition": value.String("ISDA2021"),
		},
		"swapDetails": value.Object{
			"underlying":     value.String("USD"),
			"settlementType": value.String("physical"),
			"swapType":       value.String("irsOis"),
			"isCleared":      value.Bool(false),
		},
		"swapLegs": value.Array{
			value.Object{
				"legIndex":         value.NewInt(0),
				"direction":        value.String("pay"),
				"currency":         value.String("USD"),
				"rateType":         value.String("fixed"),
				"notional":         value.NewInt(notional),
				"interestRate":     value.NewNumber(fixedRate),
				"dayCountBasis":    value.String("ACT/360"),
				"startDate":        date(start),
				"endDate":          date(end),
				"paymentCalendars": value.Array{value.String("NY")},
				"schedule":         fixedSchedule,
			},
			value.Object{
				"legIndex":         value.NewInt(1),
				"direction":        value.String("receive"),
				"currency":         value.String("USD"),
				"rateType":         value.String("floating"),
				"notional":         value.NewInt(notional),
				"ratesetRef":       value.String("SOFR"),
				"referenceTenor":   value.String("1D"),
				"margin":           value.NewNumber(margin),
				"dayCountBasis":    value.String("ACT/360"),
				"startDate":        date(start),
				"endDate":          date(end),
				"paymentCalendars": value.Array{value.String("NY")},
				"schedule":         floatSchedule,
			},
		},
	}

	return Trade{ID: id, Data: data}, nil
}

// tradeID draws a random UUID from the generator stream and keeps the first
// 16 hex digits, uppercased.
func (g *Generator) tradeID() (string, error) {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return "", fmt.Errorf("trade id: %w", err)
	}
	hex := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
	return "IR_SWAP_" + hex[:16], nil
}

// uniform draws from [lo, hi) rounded to two decimal places.
func (g *Generator) uniform(lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + g.rng.Float64()*(hi-lo)).Round(2)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func date(t time.Time) value.String {
	return value.String(t.Format(dateLayout))
}
