package sortspec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/corray333/littlelemon/internal/service/svcerr"
)

func TestParse(t *testing.T) {
	allowed := []string{"id", "price", "title"}

	tests := []struct {
		name    string
		spec    string
		want    []Key
		wantErr bool
	}{
		{name: "empty", spec: "", want: nil},
		{name: "blank", spec: "  ", want: nil},
		{name: "single ascending", spec: "price", want: []Key{{Field: "price"}}},
		{name: "single descending", spec: "-price", want: []Key{{Field: "price", Desc: true}}},
		{
			name: "several keys with spaces",
			spec: "-price, title ,id",
			want: []Key{{Field: "price", Desc: true}, {Field: "title"}, {Field: "id"}},
		},
		{name: "empty segments skipped", spec: "title,,", want: []Key{{Field: "title"}}},
		{name: "unknown field", spec: "price,calories", wantErr: true},
		{name: "unknown descending field", spec: "-calories", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec, allowed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, svcerr.ErrValidation) {
					t.Errorf("Parse() error = %v, want validation", err)
				}

				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	keys := []Key{{Field: "price", Desc: true}, {Field: "title"}}
	if got := Join(keys); got != "-price,title" {
		t.Errorf("Join() = %q", got)
	}
}

type item struct {
	id    int
	price int
	title string
}

func TestSortStable(t *testing.T) {
	cmps := Comparators[item]{
		"id":    func(a, b item) int { return a.id - b.id },
		"price": func(a, b item) int { return a.price - b.price },
		"title": func(a, b item) int {
			switch {
			case a.title < b.title:
				return -1
			case a.title > b.title:
				return 1
			default:
				return 0
			}
		},
	}

	items := []item{
		{id: 1, price: 5, title: "b"},
		{id: 2, price: 3, title: "a"},
		{id: 3, price: 5, title: "a"},
		{id: 4, price: 3, title: "a"},
	}

	tests := []struct {
		name string
		keys []Key
		want []int
	}{
		{name: "no keys keeps order", keys: nil, want: []int{1, 2, 3, 4}},
		{name: "price ascending is stable", keys: []Key{{Field: "price"}}, want: []int{2, 4, 1, 3}},
		{name: "price descending is stable", keys: []Key{{Field: "price", Desc: true}}, want: []int{1, 3, 2, 4}},
		{
			name: "price descending then title",
			keys: []Key{{Field: "price", Desc: true}, {Field: "title"}},
			want: []int{3, 1, 2, 4},
		},
		{name: "id descending", keys: []Key{{Field: "id", Desc: true}}, want: []int{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]item(nil), items...)
			SortStable(got, tt.keys, cmps)

			ids := make([]int, len(got))
			for i, it := range got {
				ids[i] = it.id
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("SortStable() = %v, want %v", ids, tt.want)
			}
		})
	}
}
