// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

// Pipe composes operators left to right: Pipe2(src, a, b) subscribes to
// b(a(src)). Each arity is spelled out so the intermediate element types are
// inferred; Go has no variadic type parameters to fold an arbitrary chain.

func Pipe1[A, B any](source Observable[A], op1 func(Observable[A]) Observable[B]) Observable[B] {
	return op1(source)
}

func Pipe2[A, B, C any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C]) Observable[C] {
	return op2(op1(source))
}

func Pipe3[A, B, C, D any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C], op3 func(Observable[C]) Observable[D]) Observable[D] {
	return op3(op2(op1(source)))
}

func Pipe4[A, B, C, D, E any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C], op3 func(Observable[C]) Observable[D], op4 func(Observable[D]) Observable[E]) Observable[E] {
	return op4(op3(op2(op1(source))))
}

func Pipe5[A, B, C, D, E, F any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C], op3 func(Observable[C]) Observable[D], op4 func(Observable[D]) Observable[E], op5 func(Observable[E]) Observable[F]) Observable[F] {
	return op5(op4(op3(op2(op1(source)))))
}

func Pipe6[A, B, C, D, E, F, G any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C], op3 func(Observable[C]) Observable[D], op4 func(Observable[D]) Observable[E], op5 func(Observable[E]) Observable[F], op6 func(Observable[F]) Observable[G]) Observable[G] {
	return op6(op5(op4(op3(op2(op1(source))))))
}

func Pipe7[A, B, C, D, E, F, G, H any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C], op3 func(Observable[C]) Observable[D], op4 func(Observable[D]) Observable[E], op5 func(Observable[E]) Observable[F], op6 func(Observable[F]) Observable[G], op7 func(Observable[G]) Observable[H]) Observable[H] {
	return op7(op6(op5(op4(op3(op2(op1(source)))))))
}

func Pipe8[A, B, C, D, E, F, G, H, I any](source Observable[A], op1 func(Observable[A]) Observable[B], op2 func(Observable[B]) Observable[C], op3 func(Observable[C]) Observable[D], op4 func(Observable[D]) Observable[E], op5 func(Observable[E]) Observable[F], op6 func(Observable[F]) Observable[G], op7 func(Observable[G]) Observable[H], op8 func(Observable[H]) Observable[I]) Observable[I] {
	return op8(op7(op6(op5(op4(op3(op2(op1(source))))))))
}
