package saxpy

// runWorker applies iterations rounds of Y[i] += a*X[i] over r and hands the
// sum of the updated Y[r] to acc after each round. Indices and iterations are
// visited in increasing order.
func runWorker(id int, r Range, iterations int, w *Workload, acc *Accumulator, p *Progress) {
	if r.Empty() {
		p.complete(id)
		return
	}
	y := w.Y[r.Lo:r.Hi:r.Hi]
	x := w.X[r.Lo:r.Hi:r.Hi]
	x = x[:len(y)]
	a := w.A
	for it := 0; it < iterations; it++ {
		var sum float64
		for i := range y {
			// The conversion forces the product to be rounded on its own,
			// so FMA targets produce the same bits as Reference.
			y[i] += float64(a * x[i])
			sum += y[i]
		}
		acc.Add(id, it, sum)
		p.tick(id)
	}
}
