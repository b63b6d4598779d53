package railz

// OnFailure creates a Step that runs handler after step fails. The chain
// still fails; the handler only gets a chance to record detail into the
// context, such as which stage failed or a fallback value for the finisher.
//
// OnFailure suits steps built elsewhere that cannot be changed to record
// their own failure:
//
//	checked := railz.OnFailure(inventory.Reserve, func(o *Order) {
//	    o.Status = "out of stock"
//	})
//
// The handler does not run when step passes.
func OnFailure[C any](step Step[C], handler func(*C)) Step[C] {
	return func(c *C) bool {
		if step(c) {
			return true
		}
		handler(c)
		return false
	}
}
