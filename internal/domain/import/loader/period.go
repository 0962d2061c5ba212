package loader

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidPeriod = errors.New("invalid period, expected MMYYYY")

var monthFolders = [...]string{
	"janeiro", "fevereiro", "marco", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Period is one reconciliation month
type Period struct {
	Month int
	Year  int
	Code  string // MMYYYY, as used in file names
}

// ParsePeriod parses a code such as "072025"
func ParsePeriod(code string) (Period, error) {
	if len(code) != 6 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, code)
	}
	month, err := strconv.Atoi(code[:2])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, code)
	}
	year, err := strconv.Atoi(code[2:])
	if err != nil || year < 1 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, code)
	}
	return Period{Month: month, Year: year, Code: code}, nil
}

// FolderName returns the data folder of the month, e.g. "marco"
func (p Period) FolderName() string {
	return monthFolders[p.Month-1]
}

// String formats the period for display, e.g. "Março/2025"
func (p Period) String() string {
	if p.Month < 1 || p.Month > 12 {
		return p.Code
	}
	return fmt.Sprintf("%s/%04d", monthNames[p.Month-1], p.Year)
}
