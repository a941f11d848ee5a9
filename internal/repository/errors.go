// Package repository implements the service's data access over the
// document store: accounts, ticket codes, prizes and refresh tokens.
// This file defines sentinel errors reused across repositories so
// higher layers such as handlers can distinguish failure scenarios
// with errors.Is instead of string matching. Store-level sentinels
// (store.ErrNotFound, store.ErrKeyExists) pass through untouched.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as shipping another shop's ticket or
// deleting another owner's prize. Handlers should translate this into
// an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNoShopTag is returned when an operation needs the caller's shop
// tag but no account document exists for the uid. The caller must run
// the account bootstrap first.
var ErrNoShopTag = errors.New("no shop tag for user")

// ErrCodeSpaceExhausted is returned when the code generator hits its
// retry cap without claiming a free key. At realistic volumes this
// means the shop has consumed most of its 2^24 suffix space.
var ErrCodeSpaceExhausted = errors.New("code space exhausted")

// ErrAmountRange is returned when an issuance request asks for fewer
// than 1 or more than 10 codes. Rejected before any store access.
var ErrAmountRange = errors.New("amount out of range")

// ErrQuantityRange is returned when a prize quantity falls outside
// 0..999. Rejected before any store access.
var ErrQuantityRange = errors.New("quantity out of range")

// ErrUnknownPrize is returned when a redemption references a prize id
// with no public info record.
var ErrUnknownPrize = errors.New("unknown prize")

// ErrAlreadyRedeemed is returned when a ticket that already carries a
// prize is redeemed again. The lifecycle is monotonic; handlers should
// translate this into an HTTP 409 response.
var ErrAlreadyRedeemed = errors.New("ticket already redeemed")

// ErrNotRedeemed is returned when a ticket is shipped before being
// redeemed. Shipping implies a chosen prize.
var ErrNotRedeemed = errors.New("ticket not redeemed")

// ErrAlreadyShipped is returned when a shipped ticket is shipped
// again.
var ErrAlreadyShipped = errors.New("ticket already shipped")

// ErrOrderIDRequired is returned when a shipping request carries an
// empty order reference.
var ErrOrderIDRequired = errors.New("order id required")
