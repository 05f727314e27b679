// Package harness drives environments through episodes and checks that
// every TimeStep they produce honors the environment contract.
//
// The building blocks are usable on their own:
//
//   - Stepper pulls TimeSteps from an environment one at a time, resetting
//     for each episode and truncating episodes at a per-episode step cap.
//     Truncation does not mark the final TimeStep Last.
//   - ValidateObservation, ValidateDiscount, ValidateReward, ValidateTimeStep
//     and ValidateControlRange check single values against declared specs.
//   - ValidateModelNames and ValidateCameras inspect a domain's model.
//   - CompareTrajectories checks two seeded trajectories for bit-identical
//     output.
//
// Run combines them into a check plan executed over a task registry. Every
// failure is a *CheckError carrying a code from the error taxonomy, and a
// failure is fatal only to the check that produced it.
package harness
