package counter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cache"
)

const productViewsKey = "product:counters:views"

// AddProductView increments the pending view counter for a product in Redis
func AddProductView(productID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(productID), 10)
	return cache.GetClient().HIncrBy(ctx, productViewsKey, field, 1).Err()
}

// FlushProductViews drains the pending counters and applies batched
// increments to the products table.
// Uses RENAME to a temporary key for atomic drain without losing in-flight
// increments.
func FlushProductViews(repo repository.ProductRepository) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", productViewsKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", productViewsKey, tmpKey).Err(); err != nil {
		// If the key does not exist there is nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		return err
	}

	entries, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	counts := make(map[uint]int64, len(entries))
	for field, raw := range entries {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[uint(id)] = n
	}

	if err := repo.ApplyViewCounts(counts); err != nil {
		return err
	}

	return rdb.Del(ctx, tmpKey).Err()
}
