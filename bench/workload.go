package bench

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"
)

type Workload string

const (
	Load       Workload = "load"        // puts only
	ReadHeavy  Workload = "read-heavy"  // 90% gets, 10% puts
	WriteHeavy Workload = "write-heavy" // 10% gets, 90% puts
	Churn      Workload = "churn"       // 50% puts, 50% deletes
	Drain      Workload = "drain"       // deletes every key of the key space once
)

var AllWorkloads = []Workload{Load, ReadHeavy, WriteHeavy, Churn, Drain}

func ParseWorkload(s string) (Workload, error) {
	for _, w := range AllWorkloads {
		if string(w) == s {
			return w, nil
		}
	}
	return "", errors.Newf("bench: unknown workload %q", s)
}

var payload = []byte("x")

// Execute runs ops operations of workload w against idx, drawing keys from [0, keySpace).
// Drain ignores ops and deletes the whole key space in random order.
func Execute(idx Index, w Workload, ops, keySpace int, rng *rand.Rand) (int, error) {
	if keySpace <= 0 {
		return 0, errors.Newf("bench: key space must be positive, got %d", keySpace)
	}
	if w == Drain {
		for n, k := range rng.Perm(keySpace) {
			if err := idx.Delete(int64(k)); err != nil {
				return n, errors.Wrapf(err, "bench: %s on %s", w, idx.Name())
			}
		}
		return keySpace, nil
	}

	for i := 0; i < ops; i++ {
		choice := rng.IntN(100)
		key := rng.Int64N(int64(keySpace))

		var err error
		switch w {
		case Load:
			err = idx.Put(key, payload)
		case ReadHeavy:
			if choice < 90 {
				_, _, err = idx.Get(key)
			} else {
				err = idx.Put(key, payload)
			}
		case WriteHeavy:
			if choice < 10 {
				_, _, err = idx.Get(key)
			} else {
				err = idx.Put(key, payload)
			}
		case Churn:
			if choice < 50 {
				err = idx.Put(key, payload)
			} else {
				err = idx.Delete(key)
			}
		default:
			return i, errors.Newf("bench: unknown workload %q", w)
		}
		if err != nil {
			return i, errors.Wrapf(err, "bench: %s on %s", w, idx.Name())
		}
	}
	return ops, nil
}
