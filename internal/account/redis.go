// internal/account/redis.go

package account

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	ticketBalanceKey = "account:tickets"
	creditBalanceKey = "account:credits"
)

// RedisAccount keeps the two balances as Redis counters.
type RedisAccount struct {
	client *redis.Client
}

// NewRedisAccount creates a Redis-backed account.
func NewRedisAccount(client *redis.Client) *RedisAccount {
	return &RedisAccount{client: client}
}

// SpendTicket debits one ticket if the balance allows it.
func (a *RedisAccount) SpendTicket(ctx context.Context) (bool, error) {
	return a.debit(ctx, ticketBalanceKey)
}

// AddPremiumCredit credits one premium credit.
func (a *RedisAccount) AddPremiumCredit(ctx context.Context) error {
	if err := a.client.Incr(ctx, creditBalanceKey).Err(); err != nil {
		return fmt.Errorf("error crediting premium balance: %w", err)
	}
	return nil
}

// SpendPremiumCredit debits one premium credit if the balance allows it.
func (a *RedisAccount) SpendPremiumCredit(ctx context.Context) (bool, error) {
	return a.debit(ctx, creditBalanceKey)
}

// debit decrements the counter and undoes the decrement when it would have
// driven the balance negative. Concurrent debits each see their own DECR
// result, so an overdraw is always rolled back by the caller that caused it.
func (a *RedisAccount) debit(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Decr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("error debiting balance %s: %w", key, err)
	}
	if n < 0 {
		if err := a.client.Incr(ctx, key).Err(); err != nil {
			return false, fmt.Errorf("error restoring balance %s: %w", key, err)
		}
		return false, nil
	}
	return true, nil
}

// Balances returns the current ticket and premium-credit counts. Missing
// keys read as zero.
func (a *RedisAccount) Balances(ctx context.Context) (int, int, error) {
	tickets, err := a.client.Get(ctx, ticketBalanceKey).Int()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("error reading ticket balance: %w", err)
	}
	credits, err := a.client.Get(ctx, creditBalanceKey).Int()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("error reading credit balance: %w", err)
	}
	return tickets, credits, nil
}
