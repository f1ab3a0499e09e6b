package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

// InsuranceGeneratorConfig configures the synthetic policy extract
type InsuranceGeneratorConfig struct {
	PolicyCount int       `json:"policy_count"`
	StartMonth  time.Time `json:"start_month"`
	Months      int       `json:"months"`
	ClaimRate   float64   `json:"claim_rate"`
	MissingRate float64   `json:"missing_rate"` // share of blank cells in imputed columns
	Delimiter   rune      `json:"delimiter"`
	Seed        int64     `json:"seed"`
}

// DefaultInsuranceConfig returns defaults close to the real monthly extract
func DefaultInsuranceConfig() InsuranceGeneratorConfig {
	return InsuranceGeneratorConfig{
		PolicyCount: 2000,
		StartMonth:  time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC),
		Months:      18,
		ClaimRate:   0.08,
		MissingRate: 0.03,
		Delimiter:   '|',
		Seed:        42,
	}
}

// PolicyHeader is the column layout of generated files
var PolicyHeader = []string{
	"UnderwrittenCoverID", "PolicyID", "TransactionMonth", "IsVATRegistered",
	"Citizenship", "Bank", "AccountType", "MaritalStatus", "Gender",
	"Province", "PostalCode", "VehicleType", "make", "VehicleIntroDate",
	"CustomValueEstimate", "CrossBorder", "TotalPremium", "TotalClaims", "ClaimCount",
}

type weighted struct {
	value  string
	weight float64
	risk   float64
}

// provinces carry a claim-rate multiplier so province parity is rejected on default data
var provinces = []weighted{
	{"Gauteng", 0.39, 1.6}, {"Western Cape", 0.17, 0.9}, {"KwaZulu-Natal", 0.17, 1.1},
	{"North West", 0.08, 0.8}, {"Mpumalanga", 0.07, 0.9}, {"Eastern Cape", 0.04, 0.7},
	{"Limpopo", 0.04, 0.8}, {"Free State", 0.03, 0.7}, {"Northern Cape", 0.01, 0.6},
}

var postalCodes = []weighted{
	{"2000", 0.25, 1.2}, {"122", 0.15, 1.0}, {"7784", 0.12, 0.9}, {"299", 0.10, 1.0},
	{"7405", 0.08, 0.8}, {"458", 0.07, 1.1}, {"8000", 0.06, 0.9}, {"2196", 0.05, 1.3},
	{"470", 0.04, 1.0}, {"1863", 0.03, 1.0}, {"9300", 0.02, 0.7}, {"332", 0.015, 1.0},
	{"6001", 0.01, 1.0}, {"1619", 0.005, 1.0},
}

var (
	genders       = []weighted{{"Male", 0.45, 1}, {"Female", 0.40, 1}, {"Not specified", 0.15, 1}}
	banks         = []weighted{{"First National Bank", 0.4, 1}, {"ABSA Bank", 0.25, 1}, {"Standard Bank", 0.2, 1}, {"Nedbank", 0.15, 1}}
	accountTypes  = []weighted{{"Current account", 0.6, 1}, {"Savings account", 0.3, 1}, {"Transmission account", 0.1, 1}}
	maritalStatus = []weighted{{"Single", 0.5, 1}, {"Married", 0.4, 1}, {"Not specified", 0.1, 1}}
	vehicleTypes  = []weighted{{"Passenger Vehicle", 0.8, 1}, {"Medium Commercial", 0.15, 1.2}, {"Heavy Commercial", 0.05, 1.4}}
	makes         = []weighted{{"TOYOTA", 0.4, 1}, {"MERCEDES-BENZ", 0.2, 1}, {"VOLKSWAGEN", 0.2, 1}, {"NISSAN", 0.2, 1}}
	vatRegistered = []weighted{{"True", 0.1, 1}, {"False", 0.9, 1}}
	citizenships  = []weighted{{"ZA", 0.95, 1}, {"  ", 0.05, 1}}
)

// InsuranceDataGenerator produces deterministic synthetic policy rows
type InsuranceDataGenerator struct {
	config InsuranceGeneratorConfig
	rng    *rand.Rand
}

// NewInsuranceDataGenerator creates a generator
func NewInsuranceDataGenerator(config InsuranceGeneratorConfig) *InsuranceDataGenerator {
	if config.Delimiter == 0 {
		config.Delimiter = '|'
	}
	if config.Months <= 0 {
		config.Months = 1
	}
	return &InsuranceDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

func (g *InsuranceDataGenerator) pick(options []weighted) weighted {
	total := 0.0
	for _, o := range options {
		total += o.weight
	}
	r := g.rng.Float64() * total
	for _, o := range options {
		if r < o.weight {
			return o
		}
		r -= o.weight
	}
	return options[len(options)-1]
}

func (g *InsuranceDataGenerator) blankOr(s string) string {
	if g.rng.Float64() < g.config.MissingRate {
		return ""
	}
	return s
}

func money(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// GenerateRows returns PolicyHeader and the generated records
func (g *InsuranceDataGenerator) GenerateRows() ([]string, [][]string) {
	rows := make([][]string, 0, g.config.PolicyCount)
	for i := 0; i < g.config.PolicyCount; i++ {
		province := g.pick(provinces)
		postal := g.pick(postalCodes)
		vehicle := g.pick(vehicleTypes)
		month := g.config.StartMonth.AddDate(0, g.rng.Intn(g.config.Months), 0)

		// month/year intro dates, with the odd unparseable entry
		intro := fmt.Sprintf("%d/%d", 1+g.rng.Intn(12), 1990+g.rng.Intn(25))
		if g.rng.Float64() < 0.01 {
			intro = "unknown"
		}

		premium := 20 + g.rng.ExpFloat64()*60
		if g.rng.Float64() < 0.02 {
			premium = 0
		}

		claims, count := 0.0, 0
		if g.rng.Float64() < g.config.ClaimRate*province.risk*postal.risk*vehicle.risk {
			count = 1 + g.rng.Intn(2)
			claims = float64(count) * math.Exp(6+g.rng.NormFloat64())
		}

		estimate := ""
		if g.rng.Float64() > g.config.MissingRate {
			estimate = money(50000 + g.rng.Float64()*250000)
		}
		crossBorder := ""
		if g.rng.Float64() < 0.02 {
			crossBorder = "No"
		}

		rows = append(rows, []string{
			strconv.Itoa(100000 + i),
			strconv.Itoa(10000 + i/3),
			month.Format("2006-01-02 15:04:05"),
			g.pick(vatRegistered).value,
			g.pick(citizenships).value,
			g.blankOr(g.pick(banks).value),
			g.blankOr(g.pick(accountTypes).value),
			g.blankOr(g.pick(maritalStatus).value),
			g.blankOr(g.pick(genders).value),
			province.value,
			postal.value,
			vehicle.value,
			g.pick(makes).value,
			intro,
			estimate,
			crossBorder,
			money(premium),
			money(claims),
			strconv.Itoa(count),
		})
	}
	return append([]string(nil), PolicyHeader...), rows
}

// WriteDelimited writes header and rows with the configured delimiter
func (g *InsuranceDataGenerator) WriteDelimited(w io.Writer) error {
	header, rows := g.GenerateRows()
	cw := csv.NewWriter(w)
	cw.Comma = g.config.Delimiter
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteToFile writes a delimited policy file at path
func (g *InsuranceDataGenerator) WriteToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := g.WriteDelimited(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
