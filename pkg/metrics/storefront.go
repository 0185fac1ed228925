package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart, bundle and login reconciliation activity.
type StorefrontMetrics struct {
	cartMutations *prometheus.CounterVec
	cartRejects   *prometheus.CounterVec
	bundleItems   *prometheus.CounterVec
	mergeOutcomes *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart actions applied, by action and owner kind.",
	}, []string{"action", "owner"})
	cartRejects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_quantity_rejections_total",
		Help: "Cart requests rejected by the quantity guard.",
	}, []string{"owner"})
	bundleItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_bundle_items_total",
		Help: "Bundle items dispatched to the cart, by outcome.",
	}, []string{"outcome"})
	mergeOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_merge_total",
		Help: "Login cart reconciliations, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(cartMutations, cartRejects, bundleItems, mergeOutcomes)
	return &StorefrontMetrics{
		cartMutations: cartMutations,
		cartRejects:   cartRejects,
		bundleItems:   bundleItems,
		mergeOutcomes: mergeOutcomes,
	}
}

// IncCartMutation counts one applied cart action.
func (m *StorefrontMetrics) IncCartMutation(action, owner string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(action), normalizeLabel(owner)).Inc()
}

// IncQuantityRejection counts one guard rejection.
func (m *StorefrontMetrics) IncQuantityRejection(owner string) {
	if m == nil || m.cartRejects == nil {
		return
	}
	m.cartRejects.WithLabelValues(normalizeLabel(owner)).Inc()
}

// AddBundleItems counts bundle items with the given outcome.
func (m *StorefrontMetrics) AddBundleItems(outcome string, n int) {
	if m == nil || m.bundleItems == nil || n <= 0 {
		return
	}
	m.bundleItems.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// IncMergeOutcome counts one login reconciliation.
func (m *StorefrontMetrics) IncMergeOutcome(outcome string) {
	if m == nil || m.mergeOutcomes == nil {
		return
	}
	m.mergeOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
