package artifact

import (
	"fmt"
	"math/big"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
)

func unpickleFile(path string) (interface{}, error) {
	return pickle.Load(path)
}

// decodeSamples converts an unpickled value into a 1-D sample series.
func decodeSamples(value interface{}) ([]float64, error) {
	elems, err := sequence(value)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, 0, len(elems))
	for i, elem := range elems {
		f, err := scalar(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		samples = append(samples, f)
	}
	return samples, nil
}

// decodePairs converts an unpickled value into an N×2 (time, value) series.
func decodePairs(value interface{}) ([][2]float64, error) {
	elems, err := sequence(value)
	if err != nil {
		return nil, err
	}

	pairs := make([][2]float64, 0, len(elems))
	for i, elem := range elems {
		row, err := sequence(elem)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if len(row) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", i, len(row))
		}
		x, err := scalar(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		y, err := scalar(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		pairs = append(pairs, [2]float64{x, y})
	}
	return pairs, nil
}

func sequence(value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case *types.List:
		elems := make([]interface{}, v.Len())
		for i := range elems {
			elems[i] = v.Get(i)
		}
		return elems, nil
	case *types.Tuple:
		elems := make([]interface{}, v.Len())
		for i := range elems {
			elems[i] = v.Get(i)
		}
		return elems, nil
	case []interface{}:
		return v, nil
	default:
		return nil, fmt.Errorf("expected a sequence, got %T", value)
	}
}

func scalar(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("expected a numeric scalar, got %T", value)
	}
}
