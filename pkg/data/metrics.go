package data

// MetricKey names a sale statistic.
type MetricKey string

// Sale metric keys.
const (
	MinecraftItemsSold       MetricKey = "item_sold_minecraft"
	MinecraftPrepaidRedeemed MetricKey = "prepaid_card_redeemed_minecraft"
	CobaltItemsSold          MetricKey = "item_sold_cobalt"
	CobaltPrepaidRedeemed    MetricKey = "prepaid_card_redeemed_cobalt"
	ScrollsItemsSold         MetricKey = "item_sold_scrolls"
	DungeonsItemsSold        MetricKey = "item_sold_dungeons"
)

// Metric key groups.
var (
	AllMetrics = []MetricKey{
		MinecraftItemsSold,
		MinecraftPrepaidRedeemed,
		CobaltItemsSold,
		CobaltPrepaidRedeemed,
		ScrollsItemsSold,
		DungeonsItemsSold,
	}
	MinecraftMetrics = []MetricKey{MinecraftItemsSold, MinecraftPrepaidRedeemed}
	CobaltMetrics    = []MetricKey{CobaltItemsSold, CobaltPrepaidRedeemed}
	ScrollsMetrics   = []MetricKey{ScrollsItemsSold}
	DungeonsMetrics  = []MetricKey{DungeonsItemsSold}
)

// MetricGroups maps group names to their keys.
var MetricGroups = map[string][]MetricKey{
	"all":       AllMetrics,
	"minecraft": MinecraftMetrics,
	"cobalt":    CobaltMetrics,
	"scrolls":   ScrollsMetrics,
	"dungeons":  DungeonsMetrics,
}

// SaleMetrics are aggregated sale statistics.
type SaleMetrics struct {
	Total                  int64   `json:"total"`
	Last24h                int64   `json:"last24h"`
	SaleVelocityPerSeconds float64 `json:"saleVelocityPerSeconds"`
}
