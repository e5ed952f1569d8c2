// Package golearn bridges tensors to github.com/sjwhitworth/golearn so
// corrupted datasets can be scored with real learners.
package golearn

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
	"github.com/datamosh/problemgen/pkg/runner"
)

// ToDenseInstances converts a feature matrix X of shape [n, d] and a label
// vector y of shape [n] into golearn DenseInstances, taking only the rows
// listed in idx (all rows when idx is nil). Features become float
// attributes f0..f<d-1>; labels become a categorical class attribute.
// golearn's distance metrics cannot handle NaN, so missing features are
// zero filled.
func ToDenseInstances(x *pg.Float64Tensor, y *pg.Int64Tensor, idx []int) (*base.DenseInstances, error) {
	shape := x.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("golearn: want 2-d features, got shape %v", shape)
	}
	n, d := shape[0], shape[1]
	if y.Size() != n {
		return nil, &pg.ShapeMismatchError{Want: []int{n}, Got: y.Shape()}
	}
	if idx == nil {
		idx = make([]int, n)
		for i := range idx {
			idx[i] = i
		}
	}

	attrs := make([]base.Attribute, d+1)
	for i := 0; i < d; i++ {
		attrs[i] = base.NewFloatAttribute("f" + strconv.Itoa(i))
	}
	class := new(base.CategoricalAttribute)
	class.SetName("class")
	// register every label value so train and test splits agree on ids
	for _, v := range y.Data() {
		class.GetSysValFromString(strconv.FormatInt(v, 10))
	}
	attrs[d] = class

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.AddClassAttribute(class); err != nil {
		return nil, err
	}
	if err := inst.Extend(len(idx)); err != nil {
		return nil, err
	}

	xd := x.Data()
	yd := y.Data()
	for r, src := range idx {
		for c := 0; c < d; c++ {
			v := xd[src*d+c]
			if math.IsNaN(v) {
				v = 0
			}
			inst.Set(specs[c], r, base.PackFloatToBytes(v))
		}
		inst.Set(specs[d], r, class.GetSysValFromString(strconv.FormatInt(yd[src], 10)))
	}
	return inst, nil
}

// KNNModel scores a corrupted dataset with golearn's k nearest neighbours
// classifier. It expects the sweep data as a tuple of features and labels
// and reads "k" from the model parameters. The train/test split is
// deterministic: the first rows train, the trailing TestFraction evaluates.
type KNNModel struct {
	TestFraction float64
}

func (m *KNNModel) Name() string { return "knn" }

func (m *KNNModel) Run(ctx context.Context, data pg.Tensor, params pg.Params) (runner.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tu, ok := data.(pg.Tuple)
	if !ok || len(tu) != 2 {
		return nil, fmt.Errorf("knn: want (features, labels) tuple, got %T", data)
	}
	x, ok := tu[0].(*pg.Float64Tensor)
	if !ok {
		return nil, fmt.Errorf("knn: want float64 features, got %T", tu[0])
	}
	y, ok := tu[1].(*pg.Int64Tensor)
	if !ok {
		return nil, fmt.Errorf("knn: want int64 labels, got %T", tu[1])
	}
	k, err := params.Int("k")
	if err != nil {
		return nil, err
	}

	n := x.Shape()[0]
	frac := m.TestFraction
	if frac <= 0 || frac >= 1 {
		frac = 0.25
	}
	nTest := int(float64(n) * frac)
	if nTest < 1 {
		nTest = 1
	}
	nTrain := n - nTest
	if nTrain < 1 {
		return nil, fmt.Errorf("knn: %d rows is too few to split", n)
	}
	trainIdx := make([]int, nTrain)
	testIdx := make([]int, nTest)
	for i := range trainIdx {
		trainIdx[i] = i
	}
	for i := range testIdx {
		testIdx[i] = nTrain + i
	}

	train, err := ToDenseInstances(x, y, trainIdx)
	if err != nil {
		return nil, err
	}
	test, err := ToDenseInstances(x, y, testIdx)
	if err != nil {
		return nil, err
	}

	cls := knn.NewKnnClassifier("euclidean", "linear", k)
	if err := cls.Fit(train); err != nil {
		return nil, err
	}
	pred, err := cls.Predict(test)
	if err != nil {
		return nil, err
	}
	cm, err := evaluation.GetConfusionMatrix(test, pred)
	if err != nil {
		return nil, err
	}
	return runner.Metrics{"accuracy": evaluation.GetAccuracy(cm)}, nil
}
