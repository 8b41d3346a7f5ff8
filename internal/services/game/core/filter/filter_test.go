package filter

import (
	"slices"
	"testing"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
)

var finished = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(role game.Role, winner game.Team, won bool, players int, at time.Time) lifecycle.PlayerHistory {
	return lifecycle.PlayerHistory{
		GameID:      "game-1",
		UserID:      "user-1",
		FinishedAt:  at,
		PlayerCount: players,
		Role:        role,
		Winner:      winner,
		Won:         won,
	}
}

func TestParseHistoryFilterEmpty(t *testing.T) {
	for _, input := range []string{"", "   "} {
		cond, err := ParseHistoryFilter(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if !cond.Empty() {
			t.Fatalf("parse %q: want empty condition", input)
		}
		if sql := cond.SQL(); sql.Clause != "" || len(sql.Params) != 0 {
			t.Fatalf("parse %q: sql = %+v, want empty", input, sql)
		}
		if !cond.Match(lifecycle.PlayerHistory{}) {
			t.Fatalf("parse %q: empty condition must match", input)
		}
	}
}

func TestParseHistoryFilterSQL(t *testing.T) {
	tests := []struct {
		input  string
		clause string
		params []any
	}{
		{input: `role = "seer"`, clause: "role = ?", params: []any{"seer"}},
		{input: `winner != "werewolf"`, clause: "winner != ?", params: []any{"werewolf"}},
		{input: `player_count >= 9`, clause: "player_count >= ?", params: []any{int64(9)}},
		{input: `won`, clause: "won != 0"},
		{input: `NOT aborted`, clause: "NOT (aborted != 0)"},
		{
			input:  `won AND role = "werewolf"`,
			clause: "(won != 0 AND role = ?)",
			params: []any{"werewolf"},
		},
		{
			input:  `role = "seer" OR role = "medium"`,
			clause: "(role = ? OR role = ?)",
			params: []any{"seer", "medium"},
		},
		{
			input:  `finished_at > "2026-03-01T12:00:00Z"`,
			clause: "finished_at > ?",
			params: []any{finished},
		},
		{
			input:  `finished_at <= timestamp("2026-03-01T12:00:00Z")`,
			clause: "finished_at <= ?",
			params: []any{finished},
		},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			cond, err := ParseHistoryFilter(tc.input)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			sql := cond.SQL()
			if sql.Clause != tc.clause {
				t.Fatalf("clause = %q, want %q", sql.Clause, tc.clause)
			}
			if len(sql.Params) != len(tc.params) {
				t.Fatalf("params = %v, want %v", sql.Params, tc.params)
			}
			for i, want := range tc.params {
				if wantTime, ok := want.(time.Time); ok {
					got, ok := sql.Params[i].(time.Time)
					if !ok || !got.Equal(wantTime) {
						t.Fatalf("param %d = %v, want %v", i, sql.Params[i], want)
					}
					continue
				}
				if sql.Params[i] != want {
					t.Fatalf("param %d = %v, want %v", i, sql.Params[i], want)
				}
			}
		})
	}
}

func TestParseHistoryFilterRejects(t *testing.T) {
	for _, input := range []string{
		`mood = "grim"`,
		`role = 3`,
		`player_count = "nine"`,
		`won = 1`,
		`finished_at > "yesterday"`,
		`role`,
		`role = "seer" AND`,
	} {
		if _, err := ParseHistoryFilter(input); err == nil {
			t.Fatalf("parse %q: expected error", input)
		}
	}
}

func TestConditionMatch(t *testing.T) {
	records := []lifecycle.PlayerHistory{
		record(game.RoleSeer, game.TeamVillager, true, 5, finished),
		record(game.RoleWerewolf, game.TeamVillager, false, 9, finished.Add(time.Hour)),
		record(game.RolePossessed, game.TeamWerewolf, true, 9, finished.Add(2*time.Hour)),
		{Role: game.RoleVillager, PlayerCount: 5, FinishedAt: finished, Aborted: true},
	}
	tests := []struct {
		input string
		want  []int
	}{
		{input: `won`, want: []int{0, 2}},
		{input: `NOT won`, want: []int{1, 3}},
		{input: `aborted`, want: []int{3}},
		{input: `role = "werewolf"`, want: []int{1}},
		{input: `winner = "werewolf"`, want: []int{2}},
		{input: `player_count > 5`, want: []int{1, 2}},
		{input: `player_count = 5 AND NOT aborted`, want: []int{0}},
		{input: `finished_at > "2026-03-01T12:00:00Z"`, want: []int{1, 2}},
		{input: `finished_at < timestamp("2026-03-01T13:30:00Z")`, want: []int{0, 1, 3}},
		{input: `role = "seer" OR winner = "werewolf"`, want: []int{0, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			cond, err := ParseHistoryFilter(tc.input)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			var got []int
			for i, r := range records {
				if cond.Match(r) {
					got = append(got, i)
				}
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("matched = %v, want %v", got, tc.want)
			}
		})
	}
}
