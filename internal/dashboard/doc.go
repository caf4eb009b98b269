// Package dashboard renders the portfolio health dashboard: a PNG figure
// with a title band over a 2x2 grid of panels showing account counts and
// principal totals by stage, the principal spread by product and the
// distribution of accounts more than 90 days past due.
//
// All styling comes from a Theme value passed to the Renderer.
package dashboard
