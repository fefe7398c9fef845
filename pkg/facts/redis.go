package facts

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

// AFTable is the Redis table holding cached address-family facts.
//
// Key format: VRF_ADDRESS_FAMILY|<device>|<vrf>|<afi>[|<safi>]
// Fields are the dotted leaf paths. A VRF without address families is
// stored as VRF_ADDRESS_FAMILY|<device>|<vrf> with a NULL placeholder field.
const AFTable = "VRF_ADDRESS_FAMILY"

const nullField = "NULL"

// RedisStore caches gathered facts for one device in Redis.
type RedisStore struct {
	client *redis.Client
	device string
}

// NewRedisStore creates a store for device's facts at addr/db.
func NewRedisStore(addr string, db int, device string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		device: device,
	}
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, device string) *RedisStore {
	return &RedisStore{client: client, device: device}
}

// Ping tests the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) pattern() string {
	return fmt.Sprintf("%s|%s|*", AFTable, s.device)
}

// Gather implements vrfaf.FactSource. Records come back sorted by VRF
// name, then by address family key.
func (s *RedisStore) Gather(ctx context.Context) ([]model.VRF, error) {
	keys, err := s.client.Keys(ctx, s.pattern()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing %s keys: %w", AFTable, err)
	}

	hashes := make(map[string]map[string]string, len(keys))
	for _, key := range keys {
		vals, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		hashes[key] = vals
	}
	return decodeEntries(s.device, hashes)
}

// Save replaces the cached facts of the device with vrfs.
func (s *RedisStore) Save(ctx context.Context, vrfs []model.VRF) error {
	entries := encodeEntries(s.device, vrfs)

	keys, err := s.client.Keys(ctx, s.pattern()).Result()
	if err != nil {
		return fmt.Errorf("listing %s keys: %w", AFTable, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		for key, fields := range entries {
			args := make([]interface{}, 0, len(fields)*2)
			for k, v := range fields {
				args = append(args, k, v)
			}
			pipe.HSet(ctx, key, args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving facts for %s: %w", s.device, err)
	}
	return nil
}

// Flush removes the cached facts of the device.
func (s *RedisStore) Flush(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, s.pattern()).Result()
	if err != nil {
		return fmt.Errorf("listing %s keys: %w", AFTable, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// encodeEntries flattens vrfs into Redis hashes keyed by full Redis key.
func encodeEntries(device string, vrfs []model.VRF) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, v := range vrfs {
		if len(v.AddressFamilies) == 0 {
			out[strings.Join([]string{AFTable, device, v.Name}, "|")] = map[string]string{nullField: nullField}
			continue
		}
		for i := range v.AddressFamilies {
			af := &v.AddressFamilies[i]
			parts := []string{AFTable, device, v.Name, af.AFI}
			if af.SAFI != "" {
				parts = append(parts, af.SAFI)
			}
			fields := vrfaf.FlattenFamily(af)
			if len(fields) == 0 {
				fields = map[string]string{nullField: nullField}
			}
			out[strings.Join(parts, "|")] = fields
		}
	}
	return out
}

// decodeEntries rebuilds VRF records from Redis hashes.
func decodeEntries(device string, hashes map[string]map[string]string) ([]model.VRF, error) {
	prefix := AFTable + "|" + device + "|"
	keys := make([]string, 0, len(hashes))
	for k := range hashes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var vrfs []model.VRF
	index := make(map[string]int)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(key, prefix), "|")
		if len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed %s key %q", AFTable, key)
		}

		name := parts[0]
		i, ok := index[name]
		if !ok {
			vrfs = append(vrfs, model.VRF{Name: name})
			i = len(vrfs) - 1
			index[name] = i
		}
		if len(parts) == 1 {
			continue
		}

		af := model.AddressFamily{AFI: parts[1]}
		if len(parts) == 3 {
			af.SAFI = parts[2]
		}
		fields := hashes[key]
		paths := make([]string, 0, len(fields))
		for p := range fields {
			if p != nullField {
				paths = append(paths, p)
			}
		}
		sort.Strings(paths)
		for _, p := range paths {
			if err := vrfaf.SetField(&af, p, fields[p]); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
		}
		vrfs[i].AddressFamilies = append(vrfs[i].AddressFamilies, af)
	}
	return vrfs, nil
}
