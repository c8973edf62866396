package tablequery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
)

var ErrVerificationFailed = errors.New("grouped count verification failed")

type GroupCountQuery struct {
	GroupByColumn string
	Limit         int // 0 = no limit
}

func (q *GroupCountQuery) Validate() errorsx.Error {
	if q.GroupByColumn == "" {
		return errorsx.Errorf("no group by column given")
	}

	if q.Limit < 0 {
		return errorsx.Errorf("limit must not be negative, but was %d", q.Limit)
	}

	return nil
}

type groupType struct {
	key   interface{} // the first value seen for this group, as it appears in the table
	count int64
}

// Run counts the rows of table per distinct value of the query's column
func (q *GroupCountQuery) Run(table *taxitrips.Table) ([]*taxitrips.GroupCount, errorsx.Error) {
	groups, err := q.countGroups(table)
	if err != nil {
		return nil, err
	}

	var groupList []*groupType
	for _, group := range groups {
		groupList = append(groupList, group)
	}

	sort.Slice(groupList, func(i, j int) bool {
		return compareKeys(groupList[i].key, groupList[j].key) < 0
	})

	if q.Limit > 0 && len(groupList) > q.Limit {
		groupList = groupList[:q.Limit]
	}

	var groupCounts []*taxitrips.GroupCount
	for _, group := range groupList {
		groupCounts = append(groupCounts, &taxitrips.GroupCount{
			Key:   group.key,
			Count: group.count,
		})
	}

	return groupCounts, nil
}

func (q *GroupCountQuery) countGroups(table *taxitrips.Table) (map[interface{}]*groupType, errorsx.Error) {
	err := q.Validate()
	if err != nil {
		return nil, err
	}

	column, err := table.ColumnByName(q.GroupByColumn)
	if err != nil {
		return nil, err
	}

	groups := make(map[interface{}]*groupType)
	for _, value := range column.Values {
		key := groupingKey(value)

		group, ok := groups[key]
		if !ok {
			group = &groupType{key: value}
			groups[key] = group
		}
		group.count++
	}

	return groups, nil
}

// VerifyGroupCounts checks every pair a store returned against the table:
// each key must appear once, with the count the table gives for it, and there must be no more
// pairs than the limit allows. The returned error's cause is ErrVerificationFailed on a mismatch.
func (q *GroupCountQuery) VerifyGroupCounts(table *taxitrips.Table, groupCounts []*taxitrips.GroupCount) errorsx.Error {
	groups, err := q.countGroups(table)
	if err != nil {
		return err
	}

	if q.Limit > 0 && len(groupCounts) > q.Limit {
		return errorsx.Wrap(ErrVerificationFailed, "reason", fmt.Sprintf("got %d pairs, limit is %d", len(groupCounts), q.Limit))
	}

	expectedPairs := len(groups)
	if q.Limit > 0 && expectedPairs > q.Limit {
		expectedPairs = q.Limit
	}

	if len(groupCounts) != expectedPairs {
		return errorsx.Wrap(ErrVerificationFailed, "reason", fmt.Sprintf("got %d pairs, expected %d", len(groupCounts), expectedPairs))
	}

	seen := make(map[interface{}]struct{})
	for _, groupCount := range groupCounts {
		key := groupingKey(groupCount.Key)

		_, ok := seen[key]
		if ok {
			return errorsx.Wrap(ErrVerificationFailed, "reason", "key returned more than once", "key", taxitrips.FormatValue(groupCount.Key))
		}
		seen[key] = struct{}{}

		group, ok := groups[key]
		if !ok {
			return errorsx.Wrap(ErrVerificationFailed, "reason", "key not in table", "key", taxitrips.FormatValue(groupCount.Key))
		}

		if group.count != groupCount.Count {
			return errorsx.Wrap(
				ErrVerificationFailed,
				"reason", fmt.Sprintf("count was %d, expected %d", groupCount.Count, group.count),
				"key", taxitrips.FormatValue(groupCount.Key),
			)
		}
	}

	return nil
}
