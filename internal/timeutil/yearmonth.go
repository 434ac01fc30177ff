// Package timeutil handles the YYYY-MM reference months of the monthly
// releases.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type YearMonth struct {
	Year  int
	Month time.Month
}

var mesesPTBR = [...]string{
	"", "Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// ParseYearMonth accepts "YYYY-MM" and the compact "YYYYMM".
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	var ys, ms string
	switch {
	case strings.Contains(s, "-"):
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return YearMonth{}, fmt.Errorf("formato inválido (esperado YYYY-MM): %q", s)
		}
		ys, ms = parts[0], parts[1]
	case len(s) == 6:
		ys, ms = s[:4], s[4:]
	default:
		return YearMonth{}, fmt.Errorf("formato inválido (esperado YYYY-MM): %q", s)
	}
	y, err := strconv.Atoi(ys)
	if err != nil || len(ys) != 4 {
		return YearMonth{}, fmt.Errorf("ano inválido: %q", ys)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return YearMonth{}, fmt.Errorf("mês inválido: %q", ms)
	}
	if m < 1 || m > 12 {
		return YearMonth{}, fmt.Errorf("mês inválido: %d", m)
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) After(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year > o.Year
	}
	return ym.Month > o.Month
}

func (ym YearMonth) HumanPTBR() string {
	if ym.Month < time.January || ym.Month > time.December {
		return ym.String()
	}
	return fmt.Sprintf("%s de %d", mesesPTBR[ym.Month], ym.Year)
}
