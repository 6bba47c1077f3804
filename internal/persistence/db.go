// Package persistence provides SQLite-based world state storage: an
// incremental per-tick event log plus a periodic full-snapshot save/restore
// of every entity table. See design doc §4.12.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-world/internal/worldstate"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS actors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role INTEGER NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		status INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		gold INTEGER NOT NULL,
		inventory_json TEXT NOT NULL,
		equipment_json TEXT NOT NULL,
		alliance TEXT NOT NULL DEFAULT '',
		kills INTEGER NOT NULL,
		monster_eats INTEGER NOT NULL,
		evolution_stage INTEGER NOT NULL,
		respawn_tick INTEGER NOT NULL,
		is_alive INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actors_pos ON actors(pos_x, pos_y);

	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		type INTEGER NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		remaining INTEGER NOT NULL,
		max_capacity INTEGER NOT NULL,
		state INTEGER NOT NULL,
		growth_start_tick INTEGER NOT NULL,
		growth_complete_tick INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resources_pos ON resources(pos_x, pos_y);

	CREATE TABLE IF NOT EXISTS npc_monsters (
		id TEXT PRIMARY KEY,
		template TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		stats_json TEXT NOT NULL,
		status INTEGER NOT NULL,
		behavior INTEGER NOT NULL,
		patrol_origin_x REAL NOT NULL,
		patrol_origin_y REAL NOT NULL,
		patrol_radius REAL NOT NULL,
		target_id TEXT NOT NULL DEFAULT '',
		gold_drop INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_npc_pos ON npc_monsters(pos_x, pos_y);

	CREATE TABLE IF NOT EXISTS behemoths (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		health REAL NOT NULL,
		max_health REAL NOT NULL,
		attack REAL NOT NULL,
		defense REAL NOT NULL,
		status INTEGER NOT NULL,
		ore_amount INTEGER NOT NULL,
		ore_max INTEGER NOT NULL,
		fed_amount INTEGER NOT NULL,
		unconscious_until_tick INTEGER NOT NULL,
		ore_growth_complete_tick INTEGER NOT NULL,
		route_json TEXT NOT NULL,
		current_waypoint INTEGER NOT NULL,
		climbers_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS structures (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		owner TEXT NOT NULL,
		alliance TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS alliances (
		name TEXT PRIMARY KEY,
		founder_id TEXT NOT NULL,
		created_at_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alliance_members (
		alliance_name TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		PRIMARY KEY (alliance_name, actor_id)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		offered_json TEXT NOT NULL,
		requested_json TEXT NOT NULL,
		status INTEGER NOT NULL,
		created_at_tick INTEGER NOT NULL,
		resolved_at_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS crafting_queue (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		start_tick INTEGER NOT NULL,
		complete_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		data_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// --- incremental persistence -------------------------------------------

// PersistTickChanges writes this tick's events synchronously — the
// incremental half of the persistence contract; the full-entity tables are
// only rewritten by SnapshotWorld (§4.12).
func (db *DB) PersistTickChanges(tick uint64, events []worldstate.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (tick, type, data_json) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}
		if _, err := stmt.Exec(tick, e.Type, string(data)); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// TrimOldEvents removes incremental event rows older than keepTicks, called
// periodically so the log doesn't grow unbounded.
func (db *DB) TrimOldEvents(currentTick, keepTicks uint64) (int64, error) {
	if currentTick <= keepTicks {
		return 0, nil
	}
	result, err := db.conn.Exec("DELETE FROM events WHERE tick < ?", currentTick-keepTicks)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- full snapshot -------------------------------------------------------

// SnapshotWorld atomically replaces every entity table with the world's
// current state, called every SnapshotCadenceTicks ticks (§4.12).
func (db *DB) SnapshotWorld(w *worldstate.World, tick uint64) error {
	start := time.Now()
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := snapshotActors(tx, w); err != nil {
		return fmt.Errorf("snapshot actors: %w", err)
	}
	if err := snapshotResources(tx, w); err != nil {
		return fmt.Errorf("snapshot resources: %w", err)
	}
	if err := snapshotStructures(tx, w); err != nil {
		return fmt.Errorf("snapshot structures: %w", err)
	}
	if err := snapshotNPCs(tx, w); err != nil {
		return fmt.Errorf("snapshot npcs: %w", err)
	}
	if err := snapshotBehemoths(tx, w); err != nil {
		return fmt.Errorf("snapshot behemoths: %w", err)
	}
	if err := snapshotAlliances(tx, w); err != nil {
		return fmt.Errorf("snapshot alliances: %w", err)
	}
	if err := snapshotTrades(tx, w); err != nil {
		return fmt.Errorf("snapshot trades: %w", err)
	}
	if err := snapshotCraftJobs(tx, w); err != nil {
		return fmt.Errorf("snapshot crafting_queue: %w", err)
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value, updated_at) VALUES ('seed', ?, ?)",
		fmt.Sprintf("%d", w.Seed), tick); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value, updated_at) VALUES ('last_tick', ?, ?)",
		fmt.Sprintf("%d", tick), tick); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	var totalGold int64
	for _, a := range w.Actors {
		totalGold += a.Gold
	}
	slog.Info("world snapshot saved",
		"tick", tick, "actors", len(w.Actors), "npcs", len(w.NPCs),
		"totalGold", humanize.Comma(totalGold), "elapsed", time.Since(start),
	)
	return nil
}

func snapshotActors(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM actors"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO actors
		(id, name, role, pos_x, pos_y, status, stats_json, gold, inventory_json,
		 equipment_json, alliance, kills, monster_eats, evolution_stage, respawn_tick,
		 is_alive, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range w.SortedActorIDs() {
		a := w.Actors[id]
		statsJSON, _ := json.Marshal(a.Stats)
		invJSON, _ := json.Marshal(a.Inventory)
		eqJSON, _ := json.Marshal(a.Equipment)
		alive := boolToInt(a.IsAlive)
		if _, err := stmt.Exec(a.ID, a.Name, uint8(a.Role), a.Position.X, a.Position.Y,
			uint8(a.Status), string(statsJSON), a.Gold, string(invJSON), string(eqJSON),
			a.Alliance, a.Kills, a.MonsterEats, a.EvolutionStage, a.RespawnTick, alive,
			a.LastActionTick); err != nil {
			return fmt.Errorf("insert actor %s: %w", a.ID, err)
		}
	}
	return nil
}

func snapshotResources(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM resources"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO resources
		(id, type, pos_x, pos_y, remaining, max_capacity, state, growth_start_tick, growth_complete_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range w.SortedResourceIDs() {
		r := w.Resources[id]
		if _, err := stmt.Exec(r.ID, uint8(r.Type), r.Position.X, r.Position.Y, r.Remaining,
			r.MaxCapacity, uint8(r.State), r.GrowthStartTick, r.GrowthCompleteTick); err != nil {
			return fmt.Errorf("insert resource %s: %w", r.ID, err)
		}
	}
	return nil
}

func snapshotStructures(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM structures"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO structures
		(id, type, pos_x, pos_y, owner, alliance) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(w.Structures))
	for id := range w.Structures {
		ids = append(ids, id)
	}
	sortStrings(ids)
	for _, id := range ids {
		s := w.Structures[id]
		if _, err := stmt.Exec(s.ID, s.Type, s.Position.X, s.Position.Y, s.Owner, s.Alliance); err != nil {
			return fmt.Errorf("insert structure %s: %w", s.ID, err)
		}
	}
	return nil
}

func snapshotNPCs(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM npc_monsters"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO npc_monsters
		(id, template, pos_x, pos_y, stats_json, status, behavior, patrol_origin_x,
		 patrol_origin_y, patrol_radius, target_id, gold_drop)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range w.SortedNPCIDs() {
		n := w.NPCs[id]
		statsJSON, _ := json.Marshal(n.Stats)
		if _, err := stmt.Exec(n.ID, n.Template, n.Position.X, n.Position.Y, string(statsJSON),
			uint8(n.Status), uint8(n.Behavior), n.PatrolOrigin.X, n.PatrolOrigin.Y,
			n.PatrolRadius, n.TargetID, n.GoldDrop); err != nil {
			return fmt.Errorf("insert npc %s: %w", n.ID, err)
		}
	}
	return nil
}

func snapshotBehemoths(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM behemoths"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO behemoths
		(id, type, pos_x, pos_y, health, max_health, attack, defense, status, ore_amount,
		 ore_max, fed_amount, unconscious_until_tick, ore_growth_complete_tick, route_json,
		 current_waypoint, climbers_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range w.SortedBehemothIDs() {
		b := w.Behemoths[id]
		routeJSON, _ := json.Marshal(b.Route)
		climbers := make([]string, 0, len(b.Climbers))
		for cid := range b.Climbers {
			climbers = append(climbers, cid)
		}
		climbersJSON, _ := json.Marshal(climbers)
		if _, err := stmt.Exec(b.ID, b.Type, b.Position.X, b.Position.Y, b.Health, b.MaxHealth,
			b.Attack, b.Defense, uint8(b.Status), b.OreAmount, b.OreMax, b.FedAmount,
			b.UnconsciousUntilTick, b.OreGrowthCompleteTick, string(routeJSON), b.CurrentWaypoint,
			string(climbersJSON)); err != nil {
			return fmt.Errorf("insert behemoth %s: %w", b.ID, err)
		}
	}
	return nil
}

func snapshotAlliances(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM alliances"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM alliance_members"); err != nil {
		return err
	}
	allianceStmt, err := tx.Preparex("INSERT INTO alliances (name, founder_id, created_at_tick) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer allianceStmt.Close()
	memberStmt, err := tx.Preparex("INSERT INTO alliance_members (alliance_name, actor_id) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer memberStmt.Close()

	names := make([]string, 0, len(w.Alliances))
	for name := range w.Alliances {
		names = append(names, name)
	}
	sortStrings(names)
	for _, name := range names {
		a := w.Alliances[name]
		if _, err := allianceStmt.Exec(a.Name, a.FounderID, a.CreatedAtTick); err != nil {
			return fmt.Errorf("insert alliance %s: %w", a.Name, err)
		}
		members := make([]string, 0, len(a.Members))
		for id := range a.Members {
			members = append(members, id)
		}
		sortStrings(members)
		for _, id := range members {
			if _, err := memberStmt.Exec(a.Name, id); err != nil {
				return fmt.Errorf("insert alliance member %s/%s: %w", a.Name, id, err)
			}
		}
	}
	return nil
}

func snapshotTrades(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM trades"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO trades
		(id, buyer_id, seller_id, offered_json, requested_json, status, created_at_tick, resolved_at_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range w.SortedTradeIDs() {
		t := w.Trades[id]
		offeredJSON, _ := json.Marshal(t.Offered)
		requestedJSON, _ := json.Marshal(t.Requested)
		if _, err := stmt.Exec(t.ID, t.BuyerID, t.SellerID, string(offeredJSON), string(requestedJSON),
			uint8(t.Status), t.CreatedAtTick, t.ResolvedAtTick); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}
	return nil
}

func snapshotCraftJobs(tx *sqlx.Tx, w *worldstate.World) error {
	if _, err := tx.Exec("DELETE FROM crafting_queue"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO crafting_queue
		(id, actor_id, recipe_id, start_tick, complete_tick) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range w.SortedCraftJobIDs() {
		j := w.CraftJobs[id]
		if _, err := stmt.Exec(j.ID, j.ActorID, j.RecipeID, j.StartTick, j.CompleteTick); err != nil {
			return fmt.Errorf("insert crafting job %s: %w", j.ID, err)
		}
	}
	return nil
}

// --- restore --------------------------------------------------------------

type actorRow struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	Role           uint8   `db:"role"`
	PosX           float64 `db:"pos_x"`
	PosY           float64 `db:"pos_y"`
	Status         uint8   `db:"status"`
	StatsJSON      string  `db:"stats_json"`
	Gold           int64   `db:"gold"`
	InventoryJSON  string  `db:"inventory_json"`
	EquipmentJSON  string  `db:"equipment_json"`
	Alliance       string  `db:"alliance"`
	Kills          int     `db:"kills"`
	MonsterEats    int     `db:"monster_eats"`
	EvolutionStage int     `db:"evolution_stage"`
	RespawnTick    uint64  `db:"respawn_tick"`
	IsAlive        int     `db:"is_alive"`
	UpdatedAt      uint64  `db:"updated_at"`
}

// LoadWorldSnapshot restores every entity table into a freshly constructed
// World (caller supplies the seed so the RNG resumes from the right
// source) along with the tick the snapshot was taken at, returning false if
// no snapshot exists yet (boot-from-empty).
func (db *DB) LoadWorldSnapshot(seed int64) (*worldstate.World, uint64, bool, error) {
	var lastTick string
	if err := db.conn.Get(&lastTick, "SELECT value FROM world_meta WHERE key = 'last_tick'"); err != nil {
		return nil, 0, false, nil
	}
	var tick uint64
	if _, err := fmt.Sscanf(lastTick, "%d", &tick); err != nil {
		return nil, 0, false, fmt.Errorf("parse last_tick: %w", err)
	}

	w := worldstate.New(seed)

	var actorRows []actorRow
	if err := db.conn.Select(&actorRows, "SELECT * FROM actors"); err != nil {
		return nil, 0, false, fmt.Errorf("load actors: %w", err)
	}
	for _, r := range actorRows {
		a := &worldstate.Actor{
			ID: r.ID, Name: r.Name, Role: worldstate.Role(r.Role),
			Position: worldstate.Position{X: r.PosX, Y: r.PosY},
			Status:   worldstate.Status(r.Status),
			Gold:     r.Gold, Alliance: r.Alliance,
			Kills: r.Kills, MonsterEats: r.MonsterEats, EvolutionStage: r.EvolutionStage,
			RespawnTick: r.RespawnTick, IsAlive: r.IsAlive != 0, LastActionTick: r.UpdatedAt,
		}
		json.Unmarshal([]byte(r.StatsJSON), &a.Stats)
		json.Unmarshal([]byte(r.InventoryJSON), &a.Inventory)
		json.Unmarshal([]byte(r.EquipmentJSON), &a.Equipment)
		w.AddActor(a)
	}

	if err := loadResources(db, w); err != nil {
		return nil, 0, false, err
	}
	if err := loadStructures(db, w); err != nil {
		return nil, 0, false, err
	}
	if err := loadNPCs(db, w); err != nil {
		return nil, 0, false, err
	}
	if err := loadBehemoths(db, w); err != nil {
		return nil, 0, false, err
	}
	if err := loadAlliances(db, w); err != nil {
		return nil, 0, false, err
	}
	if err := loadTrades(db, w); err != nil {
		return nil, 0, false, err
	}
	if err := loadCraftJobs(db, w); err != nil {
		return nil, 0, false, err
	}

	return w, tick, true, nil
}

func loadResources(db *DB, w *worldstate.World) error {
	type row struct {
		ID                 string  `db:"id"`
		Type               uint8   `db:"type"`
		PosX               float64 `db:"pos_x"`
		PosY               float64 `db:"pos_y"`
		Remaining          int     `db:"remaining"`
		MaxCapacity        int     `db:"max_capacity"`
		State              uint8   `db:"state"`
		GrowthStartTick    uint64  `db:"growth_start_tick"`
		GrowthCompleteTick uint64  `db:"growth_complete_tick"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM resources"); err != nil {
		return fmt.Errorf("load resources: %w", err)
	}
	for _, r := range rows {
		w.AddResource(&worldstate.Resource{
			ID: r.ID, Type: worldstate.ResourceType(r.Type),
			Position: worldstate.Position{X: r.PosX, Y: r.PosY},
			Remaining: r.Remaining, MaxCapacity: r.MaxCapacity,
			State: worldstate.ResourceState(r.State),
			GrowthStartTick: r.GrowthStartTick, GrowthCompleteTick: r.GrowthCompleteTick,
		})
	}
	return nil
}

func loadStructures(db *DB, w *worldstate.World) error {
	type row struct {
		ID       string  `db:"id"`
		Type     string  `db:"type"`
		PosX     float64 `db:"pos_x"`
		PosY     float64 `db:"pos_y"`
		Owner    string  `db:"owner"`
		Alliance string  `db:"alliance"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM structures"); err != nil {
		return fmt.Errorf("load structures: %w", err)
	}
	for _, r := range rows {
		w.Structures[r.ID] = &worldstate.Structure{
			ID: r.ID, Type: r.Type, Position: worldstate.Position{X: r.PosX, Y: r.PosY},
			Owner: r.Owner, Alliance: r.Alliance,
		}
	}
	return nil
}

func loadNPCs(db *DB, w *worldstate.World) error {
	type row struct {
		ID            string  `db:"id"`
		Template      string  `db:"template"`
		PosX          float64 `db:"pos_x"`
		PosY          float64 `db:"pos_y"`
		StatsJSON     string  `db:"stats_json"`
		Status        uint8   `db:"status"`
		Behavior      uint8   `db:"behavior"`
		PatrolOriginX float64 `db:"patrol_origin_x"`
		PatrolOriginY float64 `db:"patrol_origin_y"`
		PatrolRadius  float64 `db:"patrol_radius"`
		TargetID      string  `db:"target_id"`
		GoldDrop      int64   `db:"gold_drop"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM npc_monsters"); err != nil {
		return fmt.Errorf("load npc_monsters: %w", err)
	}
	for _, r := range rows {
		n := &worldstate.NPCMonster{
			ID: r.ID, Template: r.Template, Position: worldstate.Position{X: r.PosX, Y: r.PosY},
			Status: worldstate.Status(r.Status), Behavior: worldstate.NPCBehavior(r.Behavior),
			PatrolOrigin: worldstate.Position{X: r.PatrolOriginX, Y: r.PatrolOriginY},
			PatrolRadius: r.PatrolRadius, TargetID: r.TargetID, GoldDrop: r.GoldDrop,
		}
		json.Unmarshal([]byte(r.StatsJSON), &n.Stats)
		w.AddNPC(n)
	}
	return nil
}

func loadBehemoths(db *DB, w *worldstate.World) error {
	type row struct {
		ID                    string  `db:"id"`
		Type                  string  `db:"type"`
		PosX                  float64 `db:"pos_x"`
		PosY                  float64 `db:"pos_y"`
		Health                float64 `db:"health"`
		MaxHealth             float64 `db:"max_health"`
		Attack                float64 `db:"attack"`
		Defense               float64 `db:"defense"`
		Status                uint8   `db:"status"`
		OreAmount             int     `db:"ore_amount"`
		OreMax                int     `db:"ore_max"`
		FedAmount             int     `db:"fed_amount"`
		UnconsciousUntilTick  uint64  `db:"unconscious_until_tick"`
		OreGrowthCompleteTick uint64  `db:"ore_growth_complete_tick"`
		RouteJSON             string  `db:"route_json"`
		CurrentWaypoint       int     `db:"current_waypoint"`
		ClimbersJSON          string  `db:"climbers_json"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM behemoths"); err != nil {
		return fmt.Errorf("load behemoths: %w", err)
	}
	for _, r := range rows {
		b := &worldstate.Behemoth{
			ID: r.ID, Type: r.Type, Position: worldstate.Position{X: r.PosX, Y: r.PosY},
			Health: r.Health, MaxHealth: r.MaxHealth, Attack: r.Attack, Defense: r.Defense,
			Status: worldstate.BehemothStatus(r.Status), OreAmount: r.OreAmount, OreMax: r.OreMax,
			FedAmount: r.FedAmount, UnconsciousUntilTick: r.UnconsciousUntilTick,
			OreGrowthCompleteTick: r.OreGrowthCompleteTick, CurrentWaypoint: r.CurrentWaypoint,
			Climbers: make(map[string]struct{}),
		}
		json.Unmarshal([]byte(r.RouteJSON), &b.Route)
		var climbers []string
		json.Unmarshal([]byte(r.ClimbersJSON), &climbers)
		for _, id := range climbers {
			b.Climbers[id] = struct{}{}
		}
		w.AddBehemoth(b)
	}
	return nil
}

func loadAlliances(db *DB, w *worldstate.World) error {
	type allianceRow struct {
		Name          string `db:"name"`
		FounderID     string `db:"founder_id"`
		CreatedAtTick uint64 `db:"created_at_tick"`
	}
	var rows []allianceRow
	if err := db.conn.Select(&rows, "SELECT * FROM alliances"); err != nil {
		return fmt.Errorf("load alliances: %w", err)
	}
	for _, r := range rows {
		w.Alliances[r.Name] = &worldstate.Alliance{
			Name: r.Name, FounderID: r.FounderID, CreatedAtTick: r.CreatedAtTick,
			Members: make(map[string]struct{}),
		}
	}

	type memberRow struct {
		AllianceName string `db:"alliance_name"`
		ActorID      string `db:"actor_id"`
	}
	var members []memberRow
	if err := db.conn.Select(&members, "SELECT * FROM alliance_members"); err != nil {
		return fmt.Errorf("load alliance_members: %w", err)
	}
	for _, m := range members {
		if a, ok := w.Alliances[m.AllianceName]; ok {
			a.Members[m.ActorID] = struct{}{}
		}
		if actor, ok := w.Actors[m.ActorID]; ok {
			actor.Alliance = m.AllianceName
		}
	}
	return nil
}

func loadTrades(db *DB, w *worldstate.World) error {
	type row struct {
		ID             string `db:"id"`
		BuyerID        string `db:"buyer_id"`
		SellerID       string `db:"seller_id"`
		OfferedJSON    string `db:"offered_json"`
		RequestedJSON  string `db:"requested_json"`
		Status         uint8  `db:"status"`
		CreatedAtTick  uint64 `db:"created_at_tick"`
		ResolvedAtTick uint64 `db:"resolved_at_tick"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM trades"); err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	for _, r := range rows {
		t := &worldstate.Trade{
			ID: r.ID, BuyerID: r.BuyerID, SellerID: r.SellerID,
			Status: worldstate.TradeStatus(r.Status), CreatedAtTick: r.CreatedAtTick,
			ResolvedAtTick: r.ResolvedAtTick,
		}
		json.Unmarshal([]byte(r.OfferedJSON), &t.Offered)
		json.Unmarshal([]byte(r.RequestedJSON), &t.Requested)
		w.Trades[t.ID] = t
	}
	return nil
}

func loadCraftJobs(db *DB, w *worldstate.World) error {
	type row struct {
		ID           string `db:"id"`
		ActorID      string `db:"actor_id"`
		RecipeID     string `db:"recipe_id"`
		StartTick    uint64 `db:"start_tick"`
		CompleteTick uint64 `db:"complete_tick"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM crafting_queue"); err != nil {
		return fmt.Errorf("load crafting_queue: %w", err)
	}
	for _, r := range rows {
		w.CraftJobs[r.ID] = &worldstate.CraftingJob{
			ID: r.ID, ActorID: r.ActorID, RecipeID: r.RecipeID,
			StartTick: r.StartTick, CompleteTick: r.CompleteTick,
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
