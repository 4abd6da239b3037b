package util

import (
	"fmt"
	"math/big"
	"strings"
)

// ToBaseUnits converts a human-readable amount to base units
// e.g., "0.00003" CKB (8 decimals) -> 3000 shannons
func ToBaseUnits(amount string, decimals int) (uint64, error) {
	if amount == "" {
		return 0, fmt.Errorf("amount cannot be empty")
	}
	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("amount cannot be negative: %s", amount)
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount format: %s", amount)
	}
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	if len(frac) > decimals {
		if strings.TrimRight(frac[decimals:], "0") != "" {
			return 0, fmt.Errorf("amount %s has more than %d decimals", amount, decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		return 0, nil
	}

	result, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return 0, fmt.Errorf("invalid amount: %s", amount)
	}
	if !result.IsUint64() {
		return 0, fmt.Errorf("amount out of range: %s", amount)
	}
	return result.Uint64(), nil
}

// FromBaseUnits converts base units to a human-readable amount
// e.g., 12700000000 shannons with 8 decimals -> "127"
func FromBaseUnits(amount uint64, decimals int) string {
	str := fmt.Sprintf("%d", amount)

	// Pad with leading zeros if needed
	if len(str) <= decimals {
		str = strings.Repeat("0", decimals-len(str)+1) + str
	}

	insertPos := len(str) - decimals
	whole := str[:insertPos]
	frac := strings.TrimRight(str[insertPos:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
