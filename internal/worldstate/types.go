// Package worldstate owns the authoritative entity store: actors,
// resources, NPC monsters, behemoths, structures, alliances, trades,
// crafting jobs, and the tick-scoped chat/event buffers, plus the spatial
// index over all positioned entities. All mutation passes through this
// package's methods — processors receive a *World reference with mutation
// privilege for the duration of one tick. See design doc §3.
package worldstate

import "github.com/talgya/mini-world/internal/spatial"

// World size/ranges/timing constants — part of the external contract (§6).
const (
	Width  = 1000 // world is [0, Width) x [0, Width)
	Height = 1000

	SpawnX = 500
	SpawnY = 500

	SafeZoneRadius = 100

	GatherRange = 5
	AttackRange = 5
	TradeRange  = 10
	ClimbRange  = 10
	LocalChatRadius = 100

	RespawnTicks     = 30
	DeathLossPercent = 0.20

	TreeGatherTicks = 3
	GoldGatherTicks = 2
	GoldGatherAmount = 5
	SeedDropChance  = 0.30
	SaplingGrowthTicks = 300
	WaterBonusTicks    = 50

	BehemothUnconsciousTicks = 60
	BehemothFeedThreshold    = 10
	BehemothOreGrowthTicks   = 120
	BehemothThrowOffFrac     = 0.5
	BehemothSpeed            = 2.0

	NPCAggroRange  = 30
	NPCChaseRange  = 60
	NPCSpawnRatio  = 1.5
	NPCSpawnCheckTicks = 60
	NPCSpawnMaxPerCheck = 3

	TradeExpireTicks = 30

	SnapshotCadenceTicks = 60

	// DefaultTreeCapacity is the maxCapacity given to a tree grown from a
	// planted sapling (the spec fixes the growth/water timers but leaves
	// the grown tree's yield unspecified; matched to the seeder's
	// world-generated trees for consistency).
	DefaultTreeCapacity = 10
	// DefaultGoldVeinCapacity is the maxCapacity given to world-seeded gold
	// veins.
	DefaultGoldVeinCapacity = 50
)

// Role is one of the three actor role variants.
type Role uint8

const (
	RoleMerchant Role = iota
	RoleFighter
	RoleMonster
)

func (r Role) String() string {
	switch r {
	case RoleMerchant:
		return "merchant"
	case RoleFighter:
		return "fighter"
	case RoleMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// Status is an actor's current activity state.
type Status uint8

const (
	StatusIdle Status = iota
	StatusMoving
	StatusGathering
	StatusCrafting
	StatusFighting
	StatusDead
	StatusClimbing
	StatusTrading
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusGathering:
		return "gathering"
	case StatusCrafting:
		return "crafting"
	case StatusFighting:
		return "fighting"
	case StatusDead:
		return "dead"
	case StatusClimbing:
		return "climbing"
	case StatusTrading:
		return "trading"
	default:
		return "unknown"
	}
}

// Position is a 2D world coordinate. Alias of spatial.Point so entity
// structs can hold positions directly without a conversion at every index
// call site.
type Position = spatial.Point

// ItemStack is one ordered entry in an actor's inventory.
type ItemStack struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Equipment holds an actor's equipped item ids, empty string = none.
type Equipment struct {
	Weapon string `json:"weapon,omitempty"`
	Armor  string `json:"armor,omitempty"`
	Tool   string `json:"tool,omitempty"`
}

// CombatStats are an actor's combat-relevant attributes.
type CombatStats struct {
	Health       float64 `json:"health"`
	MaxHealth    float64 `json:"maxHealth"`
	Attack       float64 `json:"attack"`
	Defense      float64 `json:"defense"`
	Speed        float64 `json:"speed"` // units per tick
	VisionRadius float64 `json:"visionRadius"`
}

// EffectiveAttack and EffectiveDefense exist as methods (rather than plain
// fields) so equipment/evolution bonuses can be layered in one place later
// without touching every call site that reads attack/defense.
func (c CombatStats) EffectiveAttack() float64  { return c.Attack }
func (c CombatStats) EffectiveDefense() float64 { return c.Defense }

// Actor is a connected player-controlled entity (merchant, fighter, or
// monster-role human player — distinct from NPCMonster, which is
// server-driven with no connection). See design doc §3.
type Actor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Position    Position `json:"position"`
	Destination *Position `json:"destination,omitempty"`
	Status      Status   `json:"status"`

	Stats CombatStats `json:"stats"`

	Gold      int64       `json:"gold"`
	Inventory []ItemStack `json:"inventory"`
	Equipment Equipment   `json:"equipment"`

	Alliance string `json:"alliance,omitempty"`

	Kills          int `json:"kills"`
	MonsterEats    int `json:"monsterEats"`
	EvolutionStage int `json:"evolutionStage"` // 1..4, only meaningful for Role == RoleMonster

	ActionCooldownUntilTick uint64 `json:"-"`
	RespawnTick             uint64 `json:"-"` // 0 = not scheduled
	LastActionTick          uint64 `json:"-"`
	ConnectedAtTick         uint64 `json:"-"`

	IsAlive   bool `json:"isAlive"`
	Connected bool `json:"-"`

	// GatherTargetID/GatherStartTick track an in-progress gather attachment;
	// zero value means not gathering.
	GatherTargetID string `json:"-"`
	GatherStartTick uint64 `json:"-"`

	// ClimbingBehemothID is set while Status == StatusClimbing.
	ClimbingBehemothID string `json:"-"`
}

// baseStats gives each role its starting combat stats and vision radius.
// Fighter values match the worked combat example (§8 scenario 1: ATK 15,
// DEF 10, HP 100); merchant and monster-role values are an implementation
// choice the source left untabulated, picked to keep fighters the
// best-armored role and monsters the fastest.
var baseStats = map[Role]CombatStats{
	RoleMerchant: {Health: 80, MaxHealth: 80, Attack: 5, Defense: 5, Speed: 3, VisionRadius: 80},
	RoleFighter:  {Health: 100, MaxHealth: 100, Attack: 15, Defense: 10, Speed: 4, VisionRadius: 100},
	RoleMonster:  {Health: 60, MaxHealth: 60, Attack: 12, Defense: 6, Speed: 3.5, VisionRadius: 100},
}

// NewActor constructs a freshly spawned actor with its role's base stats,
// at the world spawn point, alive and idle.
func NewActor(id, name string, role Role) *Actor {
	return &Actor{
		ID:             id,
		Name:           name,
		Role:           role,
		Position:       Position{X: SpawnX, Y: SpawnY},
		Status:         StatusIdle,
		Stats:          baseStats[role],
		EvolutionStage: 1,
		IsAlive:        true,
		Connected:      true,
	}
}

// ResourceType enumerates harvestable resource kinds.
type ResourceType uint8

const (
	ResourceTree ResourceType = iota
	ResourceSapling
	ResourceGoldVein
)

func (r ResourceType) String() string {
	switch r {
	case ResourceTree:
		return "tree"
	case ResourceSapling:
		return "sapling"
	case ResourceGoldVein:
		return "gold_vein"
	default:
		return "unknown"
	}
}

// ResourceState is a resource's current availability.
type ResourceState uint8

const (
	ResourceAvailable ResourceState = iota
	ResourceBeingGathered
	ResourceDepleted
	ResourceGrowing
)

// Resource is a gatherable world object (§3).
type Resource struct {
	ID       string       `json:"id"`
	Type     ResourceType `json:"type"`
	Position Position     `json:"position"`

	Remaining   int           `json:"remaining"`
	MaxCapacity int           `json:"maxCapacity"`
	State       ResourceState `json:"state"`

	GrowthStartTick    uint64 `json:"growthStartTick,omitempty"`
	GrowthCompleteTick uint64 `json:"growthCompleteTick,omitempty"`

	GatheredByID string `json:"-"` // actor currently attached, "" if none
}

// NPCBehavior is an NPC monster's AI state.
type NPCBehavior uint8

const (
	NPCPatrol NPCBehavior = iota
	NPCChase
	NPCAttack
	NPCFlee
	NPCIdle
)

// NPCMonster is a server-driven mob with no connection (§3).
type NPCMonster struct {
	ID       string   `json:"id"`
	Template string   `json:"template"`
	Position Position `json:"position"`

	Stats CombatStats `json:"stats"`

	Status   Status      `json:"status"`
	Behavior NPCBehavior `json:"behavior"`

	PatrolOrigin Position `json:"patrolOrigin"`
	PatrolRadius float64  `json:"patrolRadius"`

	TargetID string `json:"targetId,omitempty"`

	GoldDrop int64 `json:"goldDrop"`
}

// BehemothStatus is a behemoth's lifecycle phase.
type BehemothStatus uint8

const (
	BehemothRoaming BehemothStatus = iota
	BehemothUnconscious
	BehemothWaking
)

// Behemoth is a large neutral creature with a feed/knockout/mine cycle (§3).
type Behemoth struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"` // determines ore kind
	Position Position `json:"position"`

	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Attack    float64 `json:"attack"`
	Defense   float64 `json:"defense"`

	Status BehemothStatus `json:"status"`

	OreAmount int `json:"oreAmount"`
	OreMax    int `json:"oreMax"`
	FedAmount int `json:"fedAmount"`

	UnconsciousUntilTick uint64 `json:"unconsciousUntilTick,omitempty"`

	OreGrowthCompleteTick uint64 `json:"-"` // 0 = no timer armed

	Route           []Position `json:"route,omitempty"`
	CurrentWaypoint int        `json:"currentWaypoint"`

	// Climbers is the set of actor ids currently climbing this behemoth.
	Climbers map[string]struct{} `json:"-"`
}

// Structure is a player-built or world-placed fixture (§3).
type Structure struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Owner    string   `json:"owner"`
	Alliance string   `json:"alliance,omitempty"`
}

// Alliance is a named group of actors (§3).
type Alliance struct {
	Name        string          `json:"name"`
	FounderID   string          `json:"founderId"`
	Members     map[string]struct{} `json:"-"`
	CreatedAtTick uint64        `json:"createdAtTick"`
}

// TradeStatus is a proposed trade's resolution state.
type TradeStatus uint8

const (
	TradePending TradeStatus = iota
	TradeAccepted
	TradeRejected
	TradeExpired
)

// Trade is a proposed item/gold exchange between two actors (§3).
type Trade struct {
	ID       string `json:"id"`
	BuyerID  string `json:"buyerId"`
	SellerID string `json:"sellerId"`

	Offered  []ItemStack `json:"offered"`
	Requested []ItemStack `json:"requested"`

	Status TradeStatus `json:"status"`

	CreatedAtTick  uint64 `json:"createdAtTick"`
	ResolvedAtTick uint64 `json:"resolvedAtTick,omitempty"`
}

// ExpiresAtTick returns the tick at which a pending trade expires.
func (t Trade) ExpiresAtTick() uint64 { return t.CreatedAtTick + TradeExpireTicks }

// CraftingJob is an in-progress crafting order (§3).
type CraftingJob struct {
	ID          string `json:"id"`
	ActorID     string `json:"actorId"`
	RecipeID    string `json:"recipeId"`
	StartTick   uint64 `json:"startTick"`
	CompleteTick uint64 `json:"completeTick"`
}

// ChatMode is the scope of a chat message.
type ChatMode uint8

const (
	ChatWhisper ChatMode = iota
	ChatLocal
	ChatBroadcast
)

func (m ChatMode) String() string {
	switch m {
	case ChatWhisper:
		return "whisper"
	case ChatLocal:
		return "local"
	case ChatBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// AllRecipients is the sentinel recipient set meaning "every connected
// actor" (broadcast-mode messages).
const AllRecipients = "all"

// ChatMessage is a transient message cleared from the world at tick end (§3).
type ChatMessage struct {
	ID         string   `json:"id"`
	Tick       uint64   `json:"tick"`
	SenderID   string   `json:"senderId"`
	SenderName string   `json:"senderName"`
	Mode       ChatMode `json:"mode"`
	Content    string   `json:"content"`
	TargetID   string   `json:"targetId,omitempty"`
	SenderPosition Position `json:"senderPosition"`

	// Recipients is either a set of actor ids, or {AllRecipients} meaning
	// everyone. Checked via IsRecipient.
	Recipients map[string]struct{} `json:"-"`
}

// IsRecipient reports whether actorID should receive this message.
func (m ChatMessage) IsRecipient(actorID string) bool {
	if _, all := m.Recipients[AllRecipients]; all {
		return true
	}
	_, ok := m.Recipients[actorID]
	return ok
}

// CombatPair is a transient attacker/target attachment resolved each tick
// until deactivated (§3).
type CombatPair struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	StartTick  uint64 `json:"startTick"`
	Active     bool   `json:"active"`
}

// Event is a notable per-tick occurrence delivered to actors whose vision
// or identity it touches (§4.11).
type Event struct {
	Tick   uint64         `json:"tick"`
	Type   string         `json:"type"`
	Data   map[string]any `json:"data"`
	// EntityIDs lists every actor/NPC/behemoth/resource id this event
	// touches, used by the broadcaster for vision-radius filtering.
	EntityIDs []string `json:"-"`
}
