//go:build integration

package facts_test

import (
	"reflect"
	"testing"

	"github.com/newtron-network/xrvrf/internal/testutil"
	"github.com/newtron-network/xrvrf/pkg/facts"
	"github.com/newtron-network/xrvrf/pkg/model"
)

func TestRedisStoreSaveGather(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	testutil.FlushDB(t)
	ctx := testutil.Context(t)

	store := facts.NewRedisStoreWithClient(testutil.RedisClient(t), "xr1")
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	vrfs := []model.VRF{
		{
			Name: "VRF4",
			AddressFamilies: []model.AddressFamily{{
				AFI:     "ipv4",
				SAFI:    "unicast",
				Export:  &model.Export{RoutePolicy: model.String("rcp")},
				Maximum: &model.Maximum{Prefix: model.Int(23)},
			}},
		},
		{Name: "VRF6"},
	}
	if err := store.Save(ctx, vrfs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Gather(ctx)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if !reflect.DeepEqual(got, vrfs) {
		t.Errorf("Gather() = %+v, want %+v", got, vrfs)
	}
}

func TestRedisStoreSaveReplaces(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	testutil.FlushDB(t)
	ctx := testutil.Context(t)

	store := facts.NewRedisStoreWithClient(testutil.RedisClient(t), "xr1")
	if err := store.Save(ctx, []model.VRF{{Name: "OLD"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, []model.VRF{{Name: "NEW"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Gather(ctx)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "NEW" {
		t.Errorf("Gather() = %+v, want only NEW", got)
	}
}

func TestRedisStoreDevicesIsolated(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	testutil.FlushDB(t)
	ctx := testutil.Context(t)

	client := testutil.RedisClient(t)
	xr1 := facts.NewRedisStoreWithClient(client, "xr1")
	xr2 := facts.NewRedisStoreWithClient(client, "xr2")

	if err := xr1.Save(ctx, []model.VRF{{Name: "A"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := xr2.Save(ctx, []model.VRF{{Name: "B"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := xr1.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got, err := xr1.Gather(ctx)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("xr1 after Flush = %+v, want empty", got)
	}

	got, err = xr2.Gather(ctx)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "B" {
		t.Errorf("xr2 = %+v, want [B]", got)
	}
}
