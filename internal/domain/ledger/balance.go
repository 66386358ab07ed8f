package ledger

import (
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
)

// CustomerBalance sums net minus paid over the open (ACTIVE or PARTIAL) bills.
// Balances are always derived from bills and never stored.
func CustomerBalance(currency valueobject.Currency, bills []Bill) (valueobject.Money, error) {
	balance := valueobject.Zero(currency)
	for i := range bills {
		var err error
		balance, err = balance.Add(bills[i].Outstanding())
		if err != nil {
			return valueobject.Money{}, err
		}
	}
	return balance, nil
}

// CountOpen returns how many bills still count towards the balance
func CountOpen(bills []Bill) int {
	n := 0
	for i := range bills {
		if bills[i].Status.IsOpen() {
			n++
		}
	}
	return n
}
