package golearn

import (
	"context"
	"testing"

	pg "github.com/datamosh/problemgen/pkg/problemgen"
)

// two well-separated clusters, class 0 around (0,0) and class 1 around (10,10),
// interleaved so both classes appear in the train and test splits
func clusterData(n int) (*pg.Float64Tensor, *pg.Int64Tensor) {
	x := pg.NewFloat64Tensor(n, 2)
	y := pg.NewInt64Tensor(n)
	for i := 0; i < n; i++ {
		off := float64(i%5) * 0.1
		if i%2 == 0 {
			x.Set(off, i, 0)
			x.Set(off, i, 1)
			y.Data()[i] = 0
		} else {
			x.Set(10+off, i, 0)
			x.Set(10+off, i, 1)
			y.Data()[i] = 1
		}
	}
	return x, y
}

func TestToDenseInstancesShape(t *testing.T) {
	x, y := clusterData(20)
	inst, err := ToDenseInstances(x, y, nil)
	if err != nil {
		t.Fatal(err)
	}
	cols, rows := inst.Size()
	if rows != 20 {
		t.Fatalf("rows = %d, want 20", rows)
	}
	if cols != 3 {
		t.Fatalf("attributes = %d, want 2 features + class", cols)
	}
}

func TestToDenseInstancesRejectsBadShapes(t *testing.T) {
	x, _ := clusterData(20)
	if _, err := ToDenseInstances(x, pg.NewInt64Tensor(5), nil); err == nil {
		t.Fatal("expected error for label length mismatch")
	}
	if _, err := ToDenseInstances(pg.NewFloat64Tensor(20), pg.NewInt64Tensor(20), nil); err == nil {
		t.Fatal("expected error for 1-d features")
	}
}

func TestKNNSeparableClusters(t *testing.T) {
	x, y := clusterData(40)
	m := &KNNModel{TestFraction: 0.25}
	metrics, err := m.Run(context.Background(), pg.Tuple{x, y}, pg.Params{"k": 3})
	if err != nil {
		t.Fatal(err)
	}
	acc, ok := metrics["accuracy"]
	if !ok {
		t.Fatal("no accuracy metric")
	}
	if acc != 1.0 {
		t.Fatalf("accuracy = %v on perfectly separable clusters, want 1", acc)
	}
}

func TestKNNRequiresTupleAndK(t *testing.T) {
	x, y := clusterData(20)
	m := &KNNModel{}
	if _, err := m.Run(context.Background(), x, pg.Params{"k": 3}); err == nil {
		t.Fatal("expected error for non-tuple data")
	}
	if _, err := m.Run(context.Background(), pg.Tuple{x, y}, pg.Params{}); err == nil {
		t.Fatal("expected error for missing k")
	}
}
