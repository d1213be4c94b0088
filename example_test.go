package gcpro_test

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/Alp4ka/gcpro"
)

func ExampleIterate() {
	data := map[string]*gcpro.Page[string]{
		"":    {Items: []string{"MD1", "MD2"}, Meta: gcpro.ListMeta{Cursors: gcpro.Cursors{After: lo.ToPtr("MD2")}}},
		"MD2": {Items: []string{"MD3"}},
	}

	fetch := func(_ context.Context, after string) (*gcpro.Page[string], error) {
		return data[after], nil
	}

	for id, err := range gcpro.Iterate(context.Background(), fetch) {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(id)
	}
	// Output:
	// MD1
	// MD2
	// MD3
}

func ExampleIteratePages() {
	data := map[string]*gcpro.Page[string]{
		"":    {Items: []string{"PM1", "PM2"}, Meta: gcpro.ListMeta{Cursors: gcpro.Cursors{After: lo.ToPtr("PM2")}}},
		"PM2": {Items: []string{"PM3"}},
	}

	fetch := func(_ context.Context, after string) (*gcpro.Page[string], error) {
		return data[after], nil
	}

	ctx := context.Background()
	for pending := range gcpro.IteratePages(ctx, fetch) {
		page, err := pending.Await(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Printf("%d items, next %q\n", len(page.Items), page.NextCursor())
	}
	// Output:
	// 2 items, next "PM2"
	// 1 items, next ""
}
