package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDelta(t *testing.T) {
	assert.Equal(t, int64(5), ComputeDelta(10, 15))
	assert.Equal(t, int64(-15), ComputeDelta(15, 0))
	assert.Equal(t, int64(0), ComputeDelta(7, 7))
}

func TestPlans(t *testing.T) {
	cases := []struct {
		name string
		got  []Adjustment
		want []Adjustment
	}{
		{
			name: "create",
			got:  PlanCreate(Position{ProductID: 1, Quantity: 10}),
			want: []Adjustment{{ProductID: 1, Delta: 10}},
		},
		{
			name: "create with zero quantity",
			got:  PlanCreate(Position{ProductID: 1, Quantity: 0}),
			want: []Adjustment{},
		},
		{
			name: "update quantity",
			got:  PlanUpdate(Position{ProductID: 1, Quantity: 10}, Position{ProductID: 1, Quantity: 15}),
			want: []Adjustment{{ProductID: 1, Delta: 5}},
		},
		{
			name: "update unchanged",
			got:  PlanUpdate(Position{ProductID: 1, Quantity: 10}, Position{ProductID: 1, Quantity: 10}),
			want: []Adjustment{},
		},
		{
			name: "move to other product",
			got:  PlanUpdate(Position{ProductID: 1, Quantity: 10}, Position{ProductID: 2, Quantity: 4}),
			want: []Adjustment{{ProductID: 1, Delta: -10}, {ProductID: 2, Delta: 4}},
		},
		{
			name: "move empty variant",
			got:  PlanUpdate(Position{ProductID: 1, Quantity: 0}, Position{ProductID: 2, Quantity: 3}),
			want: []Adjustment{{ProductID: 2, Delta: 3}},
		},
		{
			name: "delete",
			got:  PlanDelete(Position{ProductID: 1, Quantity: 15}),
			want: []Adjustment{{ProductID: 1, Delta: -15}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}
