// Package poker provides playing cards, a shuffled deck, and a hand category
// evaluator for Texas Hold'em.
//
// # Cards
//
// Cards are small values compared with ==. Their text form is rank then suit
// letter ("As", "Td", "2c") and that form is used for JSON.
//
// # Evaluation
//
// Evaluate ranks between five and seven cards into one of ten categories,
// from HighCard (1) to RoyalFlush (10). Only the category is computed; two
// hands of the same category are not ordered by kickers.
//
//	cat := poker.Evaluate(poker.MustParseCards("As", "Ks", "Qs", "Js", "Ts"))
//	fmt.Println(cat, cat.Rank()) // royal_flush 10
package poker
