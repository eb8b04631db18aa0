// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/redis"
	"github.com/sk-pkg/util"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// RateLimit returns middleware enforcing a "<count>-<unit>" limit (e.g.
// "60-M" for 60 requests per minute, unit one of S/M/H) per client IP for
// the given route name, backed by a Redis INCR+EXPIRE counter.
//
// Parameters:
//   - redisManager: redis manager used for the counter.
//   - route: logical route name used as part of the counter key.
//   - spec: limit spec string, e.g. "60-M".
//
// Returns:
//   - gin.HandlerFunc: middleware that aborts with RateLimited once the
//     window's request budget is exhausted.
func RateLimit(redisManager *redis.Manager, i18nMgr *i18n.Manager, route, spec string) gin.HandlerFunc {
	count, window, ok := parseLimitSpec(spec)
	if !ok {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := util.SpliceStr(redisManager.Prefix, "logintel:ratelimit:", route, ":", util.GetRealIP(c))

		n, err := redisManager.Do("INCR", key)
		if err != nil {
			c.Next()
			return
		}

		current, _ := toInt64(n)
		if current == 1 {
			_, _ = redisManager.Do("EXPIRE", key, int(window.Seconds()))
		}

		if current > int64(count) {
			i18nMgr.JSON(c, e.RateLimited, nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func parseLimitSpec(spec string) (count int, window time.Duration, ok bool) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return 0, 0, false
	}

	switch strings.ToUpper(parts[1]) {
	case "S":
		window = time.Second
	case "M":
		window = time.Minute
	case "H":
		window = time.Hour
	default:
		return 0, 0, false
	}

	return n, window, true
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis reply type %T", v)
	}
}
