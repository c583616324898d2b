package entity

import (
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk entity configuration
type File struct {
	CompanyTickerMap  map[string]string `yaml:"company_ticker_map"`
	FinancialKeywords []string          `yaml:"financial_keywords"`
}

// LoadFile reads an entity file
func LoadFile(fname string) (*File, error) {
	bs, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	ret := new(File)
	if err := yaml.Unmarshal(bs, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
