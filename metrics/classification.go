package metrics

import (
	"gonum.org/v1/gonum/mat"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// Rate は分母が空の場合に「未定義」となりうる比率の値。
// 未定義の比率は 0 と区別して扱う必要がある（Defined を確認すること）。
type Rate struct {
	Value   float64
	Defined bool
}

// DefinedRate は定義済みのRateを作成する
func DefinedRate(v float64) Rate {
	return Rate{Value: v, Defined: true}
}

// UndefinedRate は未定義のRateを作成する
func UndefinedRate() Rate {
	return Rate{}
}

// Confusion は二値分類の混同行列のカウントを保持する
type Confusion struct {
	TP, FP, TN, FN int
}

// NewConfusion はラベルと予測（どちらも0/1）から混同行列を計算する
func NewConfusion(yTrue, yPred *mat.VecDense) (Confusion, error) {
	var c Confusion
	if yTrue == nil || yPred == nil {
		return c, scierrors.NewValueError("NewConfusion", "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return c, scierrors.Wrap(scierrors.ErrEmptyData, "NewConfusion")
	}
	if yPred.Len() != n {
		return c, scierrors.NewDimensionError("NewConfusion", n, yPred.Len(), 0)
	}

	for i := 0; i < n; i++ {
		yt, yp := yTrue.AtVec(i), yPred.AtVec(i)
		if (yt != 0 && yt != 1) || (yp != 0 && yp != 1) {
			return Confusion{}, scierrors.NewValueError("NewConfusion", "labels must be 0 or 1")
		}
		switch {
		case yt == 1 && yp == 1:
			c.TP++
		case yt == 0 && yp == 1:
			c.FP++
		case yt == 0 && yp == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c, nil
}

// Total は総サンプル数を返す
func (c Confusion) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// SelectionRate は陽性と予測された割合を返す
func (c Confusion) SelectionRate() Rate {
	n := c.Total()
	if n == 0 {
		return UndefinedRate()
	}
	return DefinedRate(float64(c.TP+c.FP) / float64(n))
}

// TruePositiveRate は実際の陽性のうち陽性と予測された割合を返す。
// 陽性が存在しない場合は未定義（0ではない）。
func (c Confusion) TruePositiveRate() Rate {
	pos := c.TP + c.FN
	if pos == 0 {
		return UndefinedRate()
	}
	return DefinedRate(float64(c.TP) / float64(pos))
}

// FalsePositiveRate は実際の陰性のうち陽性と予測された割合を返す。
// 陰性が存在しない場合は未定義。
func (c Confusion) FalsePositiveRate() Rate {
	neg := c.FP + c.TN
	if neg == 0 {
		return UndefinedRate()
	}
	return DefinedRate(float64(c.FP) / float64(neg))
}

// FalseNegativeRate は 1 − 真陽性率 を返す（真陽性率が未定義なら未定義）
func (c Confusion) FalseNegativeRate() Rate {
	tpr := c.TruePositiveRate()
	if !tpr.Defined {
		return UndefinedRate()
	}
	return DefinedRate(1 - tpr.Value)
}

// AccuracyRate は正しく分類された割合を返す
func (c Confusion) AccuracyRate() Rate {
	n := c.Total()
	if n == 0 {
		return UndefinedRate()
	}
	return DefinedRate(float64(c.TP+c.TN) / float64(n))
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.AccuracyRate().Value, nil
}

// SelectionRate は陽性と予測された割合を計算する
func SelectionRate(yPred *mat.VecDense) (float64, error) {
	if yPred == nil {
		return 0, scierrors.NewValueError("SelectionRate", "nil vector")
	}
	n := yPred.Len()
	if n == 0 {
		return 0, scierrors.Wrap(scierrors.ErrEmptyData, "SelectionRate")
	}
	var pos float64
	for i := 0; i < n; i++ {
		v := yPred.AtVec(i)
		if v != 0 && v != 1 {
			return 0, scierrors.NewValueError("SelectionRate", "labels must be 0 or 1")
		}
		pos += v
	}
	return pos / float64(n), nil
}
